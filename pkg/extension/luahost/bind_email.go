package luahost

import (
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const emailMetadataName = "email_metadata"

func registerEmailMetadataType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(emailMetadataName)
	ls.SetGlobal(emailMetadataName, mt)

	// Static attributes.
	ls.SetField(mt, "new", ls.NewFunction(newEmailMetadata))

	// Fields.
	ls.SetField(mt, "__index", ls.NewFunction(emailMetadataIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(emailMetadataNewIndex))
}

func newEmailMetadata(ls *lua.LState) int {
	ls.Push(wrapEmailMetadata(ls, &event.EmailMetadata{}))
	return 1
}

func wrapEmailMetadata(ls *lua.LState, val *event.EmailMetadata) *lua.LUserData {
	return wrapUserData(ls, val, emailMetadataName)
}

func checkEmailMetadata(ls *lua.LState, pos int) *event.EmailMetadata {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.EmailMetadata); ok {
		return v
	}
	ls.ArgError(pos, emailMetadataName+" expected")
	return nil
}

// Gets a field value from EmailMetadata user object.  This emulates a Lua table, allowing
// `email.subject` instead of a Lua object syntax of `email:subject()`.
func emailMetadataIndex(ls *lua.LState) int {
	m := checkEmailMetadata(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "mailbox":
		ls.Push(lua.LString(m.Mailbox))
	case "id":
		ls.Push(lua.LString(m.ID))
	case "from":
		ls.Push(wrapAddress(ls, m.From))
	case "subject":
		ls.Push(lua.LString(m.Subject))
	case "date":
		ls.Push(lua.LNumber(m.Date.Unix()))
	case "read":
		ls.Push(lua.LBool(m.Read))
	case "starred":
		ls.Push(lua.LBool(m.Starred))
	case "label":
		ls.Push(lua.LString(m.Label))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// Sets a field value on EmailMetadata user object.
func emailMetadataNewIndex(ls *lua.LState) int {
	m := checkEmailMetadata(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "mailbox":
		m.Mailbox = ls.CheckString(3)
	case "id":
		m.ID = ls.CheckString(3)
	case "from":
		m.From = checkAddress(ls, 3)
	case "subject":
		m.Subject = ls.CheckString(3)
	case "date":
		m.Date = time.Unix(ls.CheckInt64(3), 0)
	case "read":
		m.Read = ls.CheckBool(3)
	case "starred":
		m.Starred = ls.CheckBool(3)
	case "label":
		m.Label = ls.CheckString(3)
	default:
		ls.RaiseError("invalid index %q", index)
	}

	return 0
}
