package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"paperly/config"
	dbPkg "paperly/pkg/db"
)

// 子表在前
var tables = []string{"search_log", "paper", "user"}

func main() {
	yes := flag.Bool("yes", false, "跳过确认")
	flag.Parse()

	cfg := config.LoadConfig()
	orm, err := dbPkg.Open(cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Database connection failed:", err)
		os.Exit(1)
	}
	fmt.Printf("Database connected successfully (%s)\n", orm.Dialector.Name())

	if !*yes {
		fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables [%s]!\n", strings.Join(tables, ", "))
		fmt.Print("Type 'YES' to confirm: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	cleared, err := dbPkg.Reset(orm, tables...)
	for _, t := range cleared {
		fmt.Printf("Cleared table %s\n", t)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Reset failed:", err)
		os.Exit(1)
	}

	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
	fmt.Println("Auto-increment IDs reset to 1")
}
