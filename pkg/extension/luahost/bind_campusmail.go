package luahost

import (
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

const (
	campusMailName       = "campusmail"
	campusMailAfterName  = "campusmail_after"
	campusMailBeforeName = "campusmail_before"

	afterAnnouncementPublishedFnName = "after.announcement_published"
	afterEmailDeletedFnName          = "after.email_deleted"
	afterEmailStoredFnName           = "after.email_stored"
	afterEmailUpdatedFnName          = "after.email_updated"
	afterMessageSentFnName           = "after.message_sent"
	beforeMessageSentFnName          = "before.message_sent"
)

// CampusMail is the Lua global scripts attach their event functions to.
type CampusMail struct {
	After  AfterFuncs
	Before BeforeFuncs
}

// AfterFuncs holds the functions called after an operation completes.
type AfterFuncs struct {
	AnnouncementPublished *lua.LFunction
	EmailDeleted          *lua.LFunction
	EmailStored           *lua.LFunction
	EmailUpdated          *lua.LFunction
	MessageSent           *lua.LFunction
}

// BeforeFuncs holds the functions that may veto an operation.
type BeforeFuncs struct {
	MessageSent *lua.LFunction
}

// slot maps a Lua field name onto an AfterFuncs member.
func (a *AfterFuncs) slot(field string) **lua.LFunction {
	switch field {
	case "announcement_published":
		return &a.AnnouncementPublished
	case "email_deleted":
		return &a.EmailDeleted
	case "email_stored":
		return &a.EmailStored
	case "email_updated":
		return &a.EmailUpdated
	case "message_sent":
		return &a.MessageSent
	}
	return nil
}

func (b *BeforeFuncs) slot(field string) **lua.LFunction {
	if field == "message_sent" {
		return &b.MessageSent
	}
	return nil
}

// function looks up a function by its qualified event name, eg "after.email_stored".
func (cm *CampusMail) function(name string) *lua.LFunction {
	var slot **lua.LFunction
	if field, ok := strings.CutPrefix(name, "after."); ok {
		slot = cm.After.slot(field)
	} else if field, ok := strings.CutPrefix(name, "before."); ok {
		slot = cm.Before.slot(field)
	}
	if slot == nil {
		return nil
	}
	return *slot
}

func registerCampusMailTypes(ls *lua.LState) {
	mt := ls.NewTypeMetatable(campusMailName)
	ls.SetField(mt, "__index", ls.NewFunction(campusMailIndex))

	mt = ls.NewTypeMetatable(campusMailAfterName)
	ls.SetField(mt, "__index", ls.NewFunction(campusMailAfterIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(campusMailAfterNewIndex))

	mt = ls.NewTypeMetatable(campusMailBeforeName)
	ls.SetField(mt, "__index", ls.NewFunction(campusMailBeforeIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(campusMailBeforeNewIndex))

	ls.SetGlobal(campusMailName, wrapUserData(ls, &CampusMail{}, campusMailName))
}

func wrapUserData(ls *lua.LState, val any, typeName string) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(typeName))

	return ud
}

func getCampusMail(ls *lua.LState) (*CampusMail, error) {
	lv := ls.GetGlobal(campusMailName)
	if lv == nil || lv == lua.LNil {
		return nil, errors.New("campusmail object was nil")
	}

	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("campusmail object was type %s instead of UserData", lv.Type())
	}

	val, ok := ud.Value.(*CampusMail)
	if !ok {
		return nil, fmt.Errorf("campusmail object (%v) could not be cast", ud.Value)
	}

	return val, nil
}

func checkCampusMail(ls *lua.LState, pos int) *CampusMail {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*CampusMail); ok {
		return val
	}
	ls.ArgError(pos, campusMailName+" expected")
	return nil
}

func checkAfterFuncs(ls *lua.LState, pos int) *AfterFuncs {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*AfterFuncs); ok {
		return val
	}
	ls.ArgError(pos, campusMailAfterName+" expected")
	return nil
}

func checkBeforeFuncs(ls *lua.LState, pos int) *BeforeFuncs {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*BeforeFuncs); ok {
		return val
	}
	ls.ArgError(pos, campusMailBeforeName+" expected")
	return nil
}

// campusmail getter.
func campusMailIndex(ls *lua.LState) int {
	cm := checkCampusMail(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "after":
		ls.Push(wrapUserData(ls, &cm.After, campusMailAfterName))
	case "before":
		ls.Push(wrapUserData(ls, &cm.Before, campusMailBeforeName))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// campusmail.after getter.
func campusMailAfterIndex(ls *lua.LState) int {
	after := checkAfterFuncs(ls, 1)
	field := ls.CheckString(2)

	if slot := after.slot(field); slot != nil {
		ls.Push(funcOrNil(*slot))
	} else {
		ls.Push(lua.LNil)
	}

	return 1
}

// campusmail.after setter.
func campusMailAfterNewIndex(ls *lua.LState) int {
	after := checkAfterFuncs(ls, 1)
	index := ls.CheckString(2)

	slot := after.slot(index)
	if slot == nil {
		ls.RaiseError("invalid campusmail.after index %q", index)
		return 0
	}
	*slot = ls.CheckFunction(3)

	return 0
}

// campusmail.before getter.
func campusMailBeforeIndex(ls *lua.LState) int {
	before := checkBeforeFuncs(ls, 1)
	field := ls.CheckString(2)

	if slot := before.slot(field); slot != nil {
		ls.Push(funcOrNil(*slot))
	} else {
		ls.Push(lua.LNil)
	}

	return 1
}

// campusmail.before setter.
func campusMailBeforeNewIndex(ls *lua.LState) int {
	before := checkBeforeFuncs(ls, 1)
	index := ls.CheckString(2)

	slot := before.slot(index)
	if slot == nil {
		ls.RaiseError("invalid campusmail.before index %q", index)
		return 0
	}
	*slot = ls.CheckFunction(3)

	return 0
}

func funcOrNil(f *lua.LFunction) lua.LValue {
	if f == nil {
		return lua.LNil
	}

	return f
}
