// Package wabot wraps the whatsmeow client: device pairing, inbound
// message extraction and outbound text delivery.
package wabot

import (
	"context"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// Message is one inbound text event, reduced to what the command router
// needs.
type Message struct {
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	IsGroup    bool
}

type Client struct {
	wa  *whatsmeow.Client
	log waLog.Logger
}

func New(dbPath string, log waLog.Logger) (*Client, error) {
	container, err := sqlstore.New(context.Background(), "sqlite3", "file:"+dbPath+"?_foreign_keys=on", waLog.Stdout("Database", "ERROR", true))
	if err != nil {
		return nil, err
	}
	device, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, err
	}
	wa := whatsmeow.NewClient(device, waLog.Stdout("Client", "ERROR", true))
	return &Client{wa: wa, log: log}, nil
}

// OnMessage registers the inbound handler. Each message is handled on
// its own goroutine; per-session ordering is the game manager's job.
func (c *Client) OnMessage(handler func(*Message)) {
	c.wa.AddEventHandler(func(evt interface{}) {
		v, ok := evt.(*events.Message)
		if !ok || v.Info.IsFromMe {
			return
		}
		text := extractText(v)
		if text == "" {
			return
		}
		msg := &Message{
			ChatID:     v.Info.Chat.String(),
			SenderID:   v.Info.Sender.String(),
			SenderName: v.Info.PushName,
			Text:       text,
			IsGroup:    v.Info.IsGroup,
		}
		go handler(msg)
	})
}

func extractText(v *events.Message) string {
	if t := v.Message.GetConversation(); t != "" {
		return t
	}
	if ext := v.Message.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}
	return ""
}

// Connect links the device, showing a QR code on first pairing.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		qrChan, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return err
		}
		if err := c.wa.Connect(); err != nil {
			return err
		}
		for evt := range qrChan {
			switch evt.Event {
			case "code":
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			case "success":
				c.log.Infof("device paired")
			}
		}
		return nil
	}
	return c.wa.Connect()
}

func (c *Client) Disconnect() {
	c.wa.Disconnect()
}

// SendText delivers a text message. Errors are logged, not returned:
// the game engines treat delivery as fire-and-forget.
func (c *Client) SendText(chatID, text string, mentions []string) {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		c.log.Errorf("invalid chat jid %q: %v", chatID, err)
		return
	}

	var msg *waE2E.Message
	if len(mentions) == 0 {
		msg = &waE2E.Message{Conversation: proto.String(text)}
	} else {
		msg = &waE2E.Message{
			ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text:        proto.String(text),
				ContextInfo: &waE2E.ContextInfo{MentionedJID: mentions},
			},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := c.wa.SendMessage(ctx, jid, msg); err != nil {
		c.log.Errorf("send to %s failed: %v", chatID, err)
	}
}
