package luahost

import (
	"fmt"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const sendVerdictName = "verdict"

func registerSendVerdictType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(sendVerdictName)
	ls.SetGlobal(sendVerdictName, mt)

	// Static attributes.
	ls.SetField(mt, "allow", ls.NewFunction(newSendVerdict(event.ActionAllow)))
	ls.SetField(mt, "deny", ls.NewFunction(newSendVerdict(event.ActionDeny)))
}

func newSendVerdict(action int) func(*lua.LState) int {
	return func(ls *lua.LState) int {
		val := &event.SendVerdict{Action: action}
		if action == event.ActionDeny {
			val.Reason = ls.OptString(1, "Message denied by policy")
		}
		ls.Push(wrapUserData(ls, val, sendVerdictName))
		return 1
	}
}

func unwrapSendVerdict(lv lua.LValue) (*event.SendVerdict, error) {
	if ud, ok := lv.(*lua.LUserData); ok {
		if v, ok := ud.Value.(*event.SendVerdict); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("expected verdict, got %q", lv.Type().String())
}
