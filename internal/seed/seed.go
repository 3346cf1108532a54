package seed

import (
	"context"
	"fmt"

	"paperly/internal/model"
	"paperly/internal/repository"
	"paperly/internal/service"
	"paperly/pkg/password"

	"gorm.io/gorm"
)

// Account 示例账号
type Account struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Accounts 示例账号，论文的 creator 通过下标引用
var Accounts = []Account{
	{Username: "admin", Email: "admin@utec.edu.pe", Password: "admin123", FullName: "Administrador del Sistema"},
	{Username: "researcher1", Email: "researcher1@utec.edu.pe", Password: "research123", FullName: "Dr. Juan Pérez"},
	{Username: "student1", Email: "student1@utec.edu.pe", Password: "student123", FullName: "María García"},
}

type samplePaper struct {
	title     string
	abstract  string
	authors   []string
	year      int
	doi       string
	pdfURL    string
	keywords  []string
	citations int
	creator   int
}

var papers = []samplePaper{
	{
		title:     "Deep Learning Applications in Computer Vision",
		abstract:  "This paper explores the latest advancements in deep learning techniques applied to computer vision problems, including object detection, image classification, and semantic segmentation.",
		authors:   []string{"Dr. Juan Pérez", "Ana López", "Carlos Ruiz"},
		year:      2024,
		doi:       "10.1000/sample.2024.001",
		pdfURL:    "https://example.com/papers/deep-learning-cv.pdf",
		keywords:  []string{"deep learning", "computer vision", "neural networks", "object detection"},
		citations: 15,
		creator:   1,
	},
	{
		title:     "Natural Language Processing with Transformer Models",
		abstract:  "A comprehensive review of transformer architectures and their applications in various NLP tasks including machine translation, text summarization, and question answering.",
		authors:   []string{"María García", "Roberto Silva"},
		year:      2024,
		doi:       "10.1000/sample.2024.002",
		pdfURL:    "https://example.com/papers/nlp-transformers.pdf",
		keywords:  []string{"natural language processing", "transformers", "BERT", "machine translation"},
		citations: 23,
		creator:   2,
	},
	{
		title:     "Quantum Computing Algorithms for Optimization Problems",
		abstract:  "This study presents novel quantum algorithms for solving complex optimization problems, demonstrating significant speedup over classical approaches.",
		authors:   []string{"Dr. Elena Vásquez", "Miguel Torres"},
		year:      2023,
		doi:       "10.1000/sample.2023.001",
		pdfURL:    "https://example.com/papers/quantum-optimization.pdf",
		keywords:  []string{"quantum computing", "optimization", "algorithms", "quantum algorithms"},
		citations: 8,
		creator:   1,
	},
	{
		title:     "Blockchain Technology in Supply Chain Management",
		abstract:  "An implementation study of blockchain technology for transparent and secure supply chain tracking in the food industry.",
		authors:   []string{"Carlos Mendoza", "Laura Fernández", "Diego Morales"},
		year:      2023,
		doi:       "10.1000/sample.2023.002",
		pdfURL:    "https://example.com/papers/blockchain-supply-chain.pdf",
		keywords:  []string{"blockchain", "supply chain", "transparency", "food industry"},
		citations: 12,
		creator:   1,
	},
	{
		title:     "Machine Learning for Cybersecurity Threat Detection",
		abstract:  "This paper proposes a machine learning framework for real-time detection and classification of cybersecurity threats in network traffic.",
		authors:   []string{"Sofía Ramírez", "Andrés Castillo"},
		year:      2024,
		doi:       "10.1000/sample.2024.003",
		pdfURL:    "https://example.com/papers/ml-cybersecurity.pdf",
		keywords:  []string{"machine learning", "cybersecurity", "threat detection", "network security"},
		citations: 6,
		creator:   2,
	},
	{
		title:     "Edge Computing Architectures for IoT Applications",
		abstract:  "A comprehensive analysis of edge computing architectures and their performance benefits for Internet of Things applications.",
		authors:   []string{"Fernando Gutiérrez", "Valentina Cruz"},
		year:      2024,
		doi:       "10.1000/sample.2024.004",
		pdfURL:    "https://example.com/papers/edge-computing-iot.pdf",
		keywords:  []string{"edge computing", "IoT", "architecture", "performance"},
		citations: 9,
		creator:   1,
	},
}

// Summary 写入结果
type Summary struct {
	Skipped bool
	Users   []string
	Papers  int
}

// Run 写入示例账号与论文；已存在任何用户时跳过
// 全部写入在同一事务内完成
func Run(ctx context.Context, orm *gorm.DB, hasher password.Hasher) (Summary, error) {
	var sum Summary
	err := orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		n, err := users.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n > 0 {
			sum.Skipped = true
			return nil
		}

		ids := make([]uint, len(Accounts))
		for i, a := range Accounts {
			hash, err := hasher.Hash(a.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", a.Username, err)
			}
			u := &model.User{
				Username:     a.Username,
				Email:        a.Email,
				FullName:     a.FullName,
				PasswordHash: hash,
				IsActive:     true,
			}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("create user %s: %w", a.Username, err)
			}
			ids[i] = u.ID
			sum.Users = append(sum.Users, a.Username)
		}

		repo := repository.NewPaperRepository(tx)
		for _, p := range papers {
			if err := repo.Create(ctx, p.model(ids[p.creator])); err != nil {
				return fmt.Errorf("create paper %q: %w", p.title, err)
			}
			sum.Papers++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (p samplePaper) model(creator uint) *model.Paper {
	abstract, year, doi, pdf := p.abstract, p.year, p.doi, p.pdfURL
	return &model.Paper{
		Title:           p.title,
		Abstract:        &abstract,
		Authors:         service.EncodeList(p.authors),
		PublicationYear: &year,
		DOI:             &doi,
		PDFURL:          &pdf,
		Keywords:        service.EncodeList(p.keywords),
		CitationCount:   p.citations,
		CreatorID:       &creator,
	}
}
