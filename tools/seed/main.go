package main

import (
	"context"
	"fmt"
	"os"

	"paperly/config"
	"paperly/internal/model"
	"paperly/internal/seed"
	dbPkg "paperly/pkg/db"
	"paperly/pkg/password"
)

func main() {
	cfg := config.LoadConfig()

	orm, err := dbPkg.Open(cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, "数据库连接失败:", err)
		os.Exit(1)
	}
	if err := orm.AutoMigrate(model.All()...); err != nil {
		fmt.Fprintln(os.Stderr, "自动迁移失败:", err)
		os.Exit(1)
	}

	hasher, err := password.New(password.Options{
		Scheme:     password.Scheme(cfg.Password.Scheme),
		Cost:       cfg.Password.Cost,
		Secret:     cfg.JWT.Secret,
		Iterations: cfg.Password.Iterations,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "初始化密码哈希失败:", err)
		os.Exit(1)
	}

	sum, err := seed.Run(context.Background(), orm, hasher)
	if err != nil {
		fmt.Fprintln(os.Stderr, "初始化示例数据失败:", err)
		os.Exit(1)
	}
	if sum.Skipped {
		fmt.Println("数据库已有数据，跳过初始化")
		return
	}

	fmt.Println("示例数据初始化完成")
	fmt.Println("\n已创建用户:")
	for _, a := range seed.Accounts {
		fmt.Printf("  - %s / %s\n", a.Username, a.Password)
	}
	fmt.Printf("\n已创建论文: %d 篇\n", sum.Papers)
}
