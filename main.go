package main

import (
	"context"
)

func main() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("qa-forum: %v", err)
	}
}
