package main

import (
	"os"

	chatspacecmder "github.com/chatspace-app/chatspace/cmd/chatspace"
)

func main() {
	cmd := chatspacecmder.NewChatspaceCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
