package model

import "time"

// Paper 论文模型
// Authors/Keywords 以 JSON 数组文本存储，保持顺序
// Abstract 可为 NULL
// DOI 为空时存 NULL，多篇无 DOI 的论文可以共存
// CreatorID 为弱引用，不建外键

type Paper struct {
	ID              uint      `gorm:"primaryKey"`
	Title           string    `gorm:"type:varchar(500);not null;index;comment:标题"`
	Abstract        *string   `gorm:"type:text;comment:摘要"`
	Authors         string    `gorm:"type:text;comment:作者(JSON数组)"`
	PublicationYear *int      `gorm:"comment:发表年份"`
	DOI             *string   `gorm:"column:doi;type:varchar(255);uniqueIndex;comment:DOI"`
	PDFURL          *string   `gorm:"column:pdf_url;type:varchar(500);comment:PDF地址"`
	Keywords        string    `gorm:"type:text;comment:关键词(JSON数组)"`
	CitationCount   int       `gorm:"not null;default:0;index;comment:被引次数"`
	CreatorID       *uint     `gorm:"index;comment:创建者ID"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

func (Paper) TableName() string { return "paper" }
