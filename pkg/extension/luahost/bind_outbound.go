package luahost

import (
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const outboundMessageName = "outbound_message"

func registerOutboundMessageType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(outboundMessageName)
	ls.SetGlobal(outboundMessageName, mt)

	ls.SetField(mt, "__index", ls.NewFunction(outboundMessageIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(outboundMessageNewIndex))
}

func wrapOutboundMessage(ls *lua.LState, val *event.OutboundMessage) *lua.LUserData {
	return wrapUserData(ls, val, outboundMessageName)
}

func checkOutboundMessage(ls *lua.LState, pos int) *event.OutboundMessage {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.OutboundMessage); ok {
		return v
	}
	ls.ArgError(pos, outboundMessageName+" expected")
	return nil
}

func outboundMessageIndex(ls *lua.LState) int {
	m := checkOutboundMessage(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "id":
		ls.Push(lua.LString(m.ID))
	case "kind":
		ls.Push(lua.LString(m.Kind))
	case "mailbox":
		ls.Push(lua.LString(m.Mailbox))
	case "from":
		ls.Push(wrapAddress(ls, &m.From))
	case "to":
		ls.Push(wrapAddressList(ls, m.To))
	case "cc":
		ls.Push(wrapAddressList(ls, m.CC))
	case "bcc":
		ls.Push(wrapAddressList(ls, m.BCC))
	case "subject":
		ls.Push(lua.LString(m.Subject))
	case "recipients":
		ls.Push(lua.LNumber(m.Recipients))
	case "size":
		ls.Push(lua.LNumber(m.Size))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// Scripts receive their own copy of the message, setters only affect what the script sees.
func outboundMessageNewIndex(ls *lua.LState) int {
	m := checkOutboundMessage(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "subject":
		m.Subject = ls.CheckString(3)
	case "to":
		m.To = checkAddressList(ls, 3)
	case "cc":
		m.CC = checkAddressList(ls, 3)
	case "bcc":
		m.BCC = checkAddressList(ls, 3)
	default:
		ls.RaiseError("invalid outbound_message index %q", index)
	}

	return 0
}
