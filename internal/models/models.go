package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Base gives every table a uuid primary key filled in on insert.
type Base struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index"                       json:"createdAt"`
	UpdatedAt time.Time `                                   json:"updatedAt"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Base
	UserName    string     `gorm:"uniqueIndex;not null"        json:"userName"`
	Password    string     `gorm:"not null"                    json:"-"`
	CnName      string     `                                   json:"cnName"`
	Email       string     `                                   json:"email"`
	Phone       string     `                                   json:"phone"`
	AvatarURL   string     `                                   json:"avatarUrl"`
	Sex         string     `gorm:"default:SECRET"              json:"sex"`
	Status      Status     `gorm:"not null;default:ACTIVE"     json:"status"`
	Sort        int        `                                   json:"sort"`
	Tags        StringList `                                   json:"tags"`
	RoleID      string     `gorm:"type:varchar(36);index"      json:"roleId"`
	OrgID       *string    `gorm:"type:varchar(36);index"      json:"orgId"`
	PostID      *string    `gorm:"type:varchar(36);index"      json:"postId"`
	LoginCount  int        `gorm:"not null;default:0"          json:"loginCount"`
	LastLoginAt *time.Time `                                   json:"lastLoginAt"`
	LastIP      string     `                                   json:"lastIp"`
	Token       *string    `                                   json:"-"`

	Role         *Role         `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"role,omitempty"`
	Organization *Organization `gorm:"foreignKey:OrgID"                               json:"organization,omitempty"`
	Post         *Post         `gorm:"foreignKey:PostID"                              json:"post,omitempty"`
}

type Role struct {
	Base
	Name        string       `gorm:"not null"             json:"name"`
	Code        string       `gorm:"uniqueIndex;not null" json:"code"`
	Sort        int          `                            json:"sort"`
	Description string       `                            json:"description"`
	Permissions []Permission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

type Menu struct {
	Base
	ParentID   *string `gorm:"type:varchar(36);index" json:"parentId"`
	Name       string  `gorm:"uniqueIndex;not null"   json:"name"`
	Title      string  `                              json:"title"`
	Path       string  `                              json:"path"`
	Icon       string  `                              json:"icon"`
	Component  string  `                              json:"component"`
	Redirect   string  `                              json:"redirect"`
	Sort       int     `                              json:"sort"`
	HideInMenu bool    `gorm:"default:false"          json:"hideInMenu"`
}

type Permission struct {
	Base
	RoleID  string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_role_menu" json:"roleId"`
	MenuID  string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_role_menu" json:"menuId"`
	Actions StringList `json:"actions"`

	Menu *Menu `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"menu,omitempty"`
}

type Organization struct {
	Base
	ParentID *string `gorm:"type:varchar(36);index" json:"parentId"`
	Name     string  `gorm:"not null"               json:"name"`
	Code     string  `                              json:"code"`
	Sort     int     `                              json:"sort"`
}

type Post struct {
	Base
	ParentID *string `gorm:"type:varchar(36);index" json:"parentId"`
	OrgID    *string `gorm:"type:varchar(36);index" json:"orgId"`
	Name     string  `gorm:"not null"               json:"name"`
	Sort     int     `                              json:"sort"`
}

// Internationalization is one node of the translation tree; leaves carry the
// per-language strings, inner nodes only group them by name.
type Internationalization struct {
	Base
	ParentID *string `gorm:"type:varchar(36);index" json:"parentId"`
	Name     string  `gorm:"not null"               json:"name"`
	ZhCN     string  `gorm:"column:zh_cn"           json:"zh-CN"`
	EnUS     string  `gorm:"column:en_us"           json:"en-US"`
	JaJP     string  `gorm:"column:ja_jp"           json:"ja-JP"`
	ZhTW     string  `gorm:"column:zh_tw"           json:"zh-TW"`
	Sort     int     `                              json:"sort"`
}

type OperationLog struct {
	Base
	UserID    string `gorm:"type:varchar(36);index" json:"userId"`
	UserName  string `                              json:"userName"`
	Method    string `                              json:"method"`
	Path      string `                              json:"path"`
	Action    string `                              json:"action"`
	IP        string `                              json:"ip"`
	UserAgent string `                              json:"userAgent"`
	Status    int    `                              json:"status"`
	LatencyMs int64  `                              json:"latencyMs"`
	Params    string `                              json:"params"`
}

type Announcement struct {
	Base
	UserID     string `gorm:"type:varchar(36);index" json:"userId"`
	Title      string `gorm:"not null"               json:"title"`
	Content    string `gorm:"not null"               json:"content"`
	Type       string `                              json:"type"`
	Status     Status `gorm:"default:ACTIVE"         json:"status"`
	Pinned     bool   `gorm:"default:false"          json:"pinned"`
	ReadCounts int    `gorm:"default:0"              json:"readCounts"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&Organization{},
		&Post{},
		&Menu{},
		&Role{},
		&Permission{},
		&User{},
		&Internationalization{},
		&OperationLog{},
		&Announcement{},
	}
}
