package fixture

import (
	"fmt"
	"time"

	"github.com/matheus3301/wxbak/internal/message"
	"github.com/matheus3301/wxbak/internal/remark"
)

// Demo account and contacts written by WriteDemo.
const (
	DemoOwner = "wxid_demoowner0001"
	DemoAlice = "wxid_demoalice0001"
	DemoBob   = "wxid_demobob00001"
	DemoGroup = "20001234567@chatroom"
)

// WriteDemo fills root with a small backup of one account holding a direct
// chat, a group chat and a chat with an unknown contact, ending at now.
func WriteDemo(root string, now time.Time) (*Backup, error) {
	b, err := New(root)
	if err != nil {
		return nil, err
	}
	if err := b.WriteLoginInfo(Login{ExternalID: DemoOwner, Nickname: "Demo Owner"}); err != nil {
		return nil, fmt.Errorf("write login info: %w", err)
	}

	acc, err := b.Account(remark.Hash(DemoOwner))
	if err != nil {
		return nil, err
	}
	if err := acc.WriteFriends(
		Friend{ExternalID: DemoAlice, Remark: &remark.Fields{Nickname: "Alice", Remark: "Alice (work)"}},
		Friend{ExternalID: DemoBob, Remark: &remark.Fields{Nickname: "Bob"}},
		Friend{ExternalID: DemoGroup, Remark: &remark.Fields{Nickname: "Weekend Hikers"}},
	); err != nil {
		return nil, err
	}

	day := int64(24 * 60 * 60)
	ts := now.Unix()

	if _, err := acc.WriteChat(1, DemoAlice, false,
		Row{ServerID: 1001, CreateTime: ts - 2*day, Type: message.TypeText, Payload: "Are we still on for Friday?", Des: 1},
		Row{ServerID: 1002, CreateTime: ts - 2*day + 60, Type: message.TypeText, Payload: "Yes, 7pm.", Des: 0},
		Row{ServerID: 1003, CreateTime: ts - day, Type: message.TypeImage, Payload: `<msg><img length="1024"/></msg>`, Des: 1},
		Row{ServerID: 1004, CreateTime: ts - 3600, Type: message.TypeVoice, Payload: `<msg><voicemsg voicelength="4200"/></msg>`, Des: 1},
		Row{ServerID: 1005, CreateTime: ts - 1800, Type: message.TypeShare, Payload: `<msg><appmsg><title>Quarterly Report</title><type>6</type><appattach><fileext>pdf</fileext></appattach></appmsg></msg>`, Des: 0},
		Row{ServerID: 1006, CreateTime: ts - 600, Type: message.TypeText, Payload: "See you there!", Des: 1},
	); err != nil {
		return nil, err
	}

	if _, err := acc.WriteChat(2, DemoGroup, false,
		Row{ServerID: 2001, CreateTime: ts - day, Type: message.TypeSystem, Payload: `"Alice" joined the group chat`, Des: 1},
		Row{ServerID: 2002, CreateTime: ts - day + 30, Type: message.TypeText, Payload: DemoAlice + ":\nTrail map attached", Des: 1},
		Row{ServerID: 2003, CreateTime: ts - day + 90, Type: message.TypeLocation, Payload: `<msg><location x="30.25" y="120.15" label="West Lake Trailhead"/><label>West Lake Trailhead</label></msg>`, Des: 1},
		Row{ServerID: 2004, CreateTime: ts - 300, Type: message.TypeText, Payload: DemoBob + ":\nI'll bring snacks", Des: 1},
		Row{ServerID: 2005, CreateTime: ts - 120, Type: message.TypeRecall, Payload: "", Des: 1},
	); err != nil {
		return nil, err
	}

	if _, err := acc.WriteChat(3, "wxid_stranger00001", true,
		Row{ServerID: 3001, CreateTime: ts - 5*day, Type: message.TypeSticker, Payload: `<msg><emoji cdnurl="x"/>[OK]</msg>`, Des: 1},
		Row{ServerID: 3002, CreateTime: ts - 5*day + 10, Type: message.TypeVideo, Payload: `<msg><videomsg playlength="9"/></msg>`, Des: 1},
	); err != nil {
		return nil, err
	}

	return b, nil
}
