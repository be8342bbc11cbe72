package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is one incoming bot command, decoupled from the transport library.
type Message struct {
	ChatID    int64
	UserID    int64
	FirstName string
	Text      string
}

// BotAPI is the transport contract the bot runs against; the tgbotapi adapter
// implements it and tests substitute fakes.
type BotAPI interface {
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
	GetUpdates() ([]Message, error)
}

// TGBotAPIClient adapts tgbotapi.BotAPI to the BotAPI interface using long
// polling.
type TGBotAPIClient struct {
	bot          *tgbotapi.BotAPI
	updateConfig tgbotapi.UpdateConfig
	mu           sync.Mutex
}

func NewTGBotAPIClient(token string) (*TGBotAPIClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	update := tgbotapi.NewUpdate(0)
	update.Timeout = 30

	return &TGBotAPIClient{
		bot:          bot,
		updateConfig: update,
	}, nil
}

func (c *TGBotAPIClient) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := c.bot.Send(msg)
	return err
}

func (c *TGBotAPIClient) SendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}

// GetUpdates fetches pending updates and advances the offset.
func (c *TGBotAPIClient) GetUpdates() ([]Message, error) {
	c.mu.Lock()
	updates, err := c.bot.GetUpdates(c.updateConfig)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if len(updates) > 0 {
		c.updateConfig.Offset = updates[len(updates)-1].UpdateID + 1
	}
	c.mu.Unlock()

	messages := make([]Message, 0, len(updates))
	for _, update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		messages = append(messages, Message{
			ChatID:    update.Message.Chat.ID,
			UserID:    update.Message.From.ID,
			FirstName: update.Message.From.FirstName,
			Text:      update.Message.Text,
		})
	}

	return messages, nil
}

var _ BotAPI = (*TGBotAPIClient)(nil)
