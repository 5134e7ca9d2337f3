package models

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

func (s Sender) Valid() bool { return s == SenderUser || s == SenderAI }

type Message struct {
	ID             string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;type:uuid;index" json:"conversationId"`
	UserID         string    `gorm:"column:user_id;type:uuid;index" json:"userId"`
	Content        string    `gorm:"column:content;type:text" json:"content"`
	Sender         Sender    `gorm:"column:sender;type:text" json:"sender"` // "user" | "ai"
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
