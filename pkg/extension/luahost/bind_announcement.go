package luahost

import (
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const announcementName = "announcement"

func registerAnnouncementType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(announcementName)
	ls.SetGlobal(announcementName, mt)

	ls.SetField(mt, "__index", ls.NewFunction(announcementIndex))
}

func wrapAnnouncement(ls *lua.LState, val *event.AnnouncementMetadata) *lua.LUserData {
	return wrapUserData(ls, val, announcementName)
}

func checkAnnouncement(ls *lua.LState, pos int) *event.AnnouncementMetadata {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.AnnouncementMetadata); ok {
		return v
	}
	ls.ArgError(pos, announcementName+" expected")
	return nil
}

// Announcements are read-only from Lua.
func announcementIndex(ls *lua.LState) int {
	a := checkAnnouncement(ls, 1)

	switch ls.CheckString(2) {
	case "id":
		ls.Push(lua.LString(a.ID))
	case "title":
		ls.Push(lua.LString(a.Title))
	case "department":
		ls.Push(lua.LString(a.Department))
	case "audience":
		ls.Push(lua.LString(a.Audience))
	case "status":
		ls.Push(lua.LString(a.Status))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}
