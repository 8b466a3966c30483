package luahost

import (
	"net/mail"

	lua "github.com/yuin/gopher-lua"
)

const addressName = "address"

func registerAddressType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(addressName)
	ls.SetGlobal(addressName, mt)

	// Static attributes.
	ls.SetField(mt, "new", ls.NewFunction(newAddress))

	// Fields.
	ls.SetField(mt, "__index", ls.NewFunction(addressIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(addressNewIndex))
	ls.SetField(mt, "__tostring", ls.NewFunction(addressToString))
}

func newAddress(ls *lua.LState) int {
	val := &mail.Address{
		Name:    ls.CheckString(1),
		Address: ls.CheckString(2),
	}
	ls.Push(wrapAddress(ls, val))

	return 1
}

func wrapAddress(ls *lua.LState, val *mail.Address) lua.LValue {
	if val == nil {
		return lua.LNil
	}
	return wrapUserData(ls, val, addressName)
}

// wrapAddressList converts addresses into a Lua list table.
func wrapAddressList(ls *lua.LState, addrs []mail.Address) *lua.LTable {
	lt := ls.NewTable()
	for i := range addrs {
		lt.Append(wrapAddress(ls, &addrs[i]))
	}
	return lt
}

// checkAddressList reads a Lua list table of addresses, raising an error on foreign values.
func checkAddressList(ls *lua.LState, pos int) []mail.Address {
	lt := ls.CheckTable(pos)
	addrs := make([]mail.Address, 0, lt.Len())
	lt.ForEach(func(_, lv lua.LValue) {
		val, ok := unwrapAddress(lv)
		if !ok {
			ls.ArgError(pos, "list of "+addressName+" expected")
			return
		}
		addrs = append(addrs, *val)
	})
	return addrs
}

func unwrapAddress(lv lua.LValue) (*mail.Address, bool) {
	if ud, ok := lv.(*lua.LUserData); ok {
		val, ok := ud.Value.(*mail.Address)
		return val, ok
	}
	return nil, false
}

func checkAddress(ls *lua.LState, pos int) *mail.Address {
	if val, ok := unwrapAddress(ls.Get(pos)); ok {
		return val
	}
	ls.ArgError(pos, addressName+" expected")
	return nil
}

func addressIndex(ls *lua.LState) int {
	val := checkAddress(ls, 1)
	switch ls.CheckString(2) {
	case "name":
		ls.Push(lua.LString(val.Name))
	case "address":
		ls.Push(lua.LString(val.Address))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

func addressNewIndex(ls *lua.LState) int {
	val := checkAddress(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "name":
		val.Name = ls.CheckString(3)
	case "address":
		val.Address = ls.CheckString(3)
	default:
		ls.RaiseError("invalid address index %q", index)
	}

	return 0
}

func addressToString(ls *lua.LState) int {
	ls.Push(lua.LString(checkAddress(ls, 1).String()))
	return 1
}
