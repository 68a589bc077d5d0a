// Package history persists user inputs and their conversation ids so a
// previous chat can be resumed in a later session.
package history

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type HistoryManager struct {
	db *gorm.DB
}

// HistoryEntry records one user input within a conversation.
type HistoryEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	ChatID string `gorm:"index"`
	Input  string
}

// ErrNoHistory is returned when no previous conversation exists to resume.
var ErrNoHistory = errors.New("no previous conversation found")

func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening history database: %v\n", err)
		return nil, err
	}

	if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
		fmt.Fprintf(os.Stderr, "error auto-migrating history schema: %v\n", err)
		return nil, err
	}

	return &HistoryManager{
		db: db,
	}, nil
}

// Record stores one user input for the given conversation.
func (m *HistoryManager) Record(chatID, input string) error {
	entry := HistoryEntry{
		ChatID: chatID,
		Input:  input,
	}
	if result := m.db.Create(&entry); result.Error != nil {
		return result.Error
	}
	return nil
}

// LatestChatID returns the chat id of the most recently recorded input.
func (m *HistoryManager) LatestChatID() (string, error) {
	var entry HistoryEntry
	result := m.db.Order("created_at desc").First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrNoHistory
		}
		return "", result.Error
	}
	return entry.ChatID, nil
}

// Inputs returns the recorded inputs for one conversation, oldest first.
func (m *HistoryManager) Inputs(chatID string) ([]string, error) {
	var entries []HistoryEntry
	result := m.db.Where("chat_id = ?", chatID).Order("created_at asc").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	inputs := make([]string, 0, len(entries))
	for _, entry := range entries {
		inputs = append(inputs, entry.Input)
	}
	return inputs, nil
}
