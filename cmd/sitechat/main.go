package main

import (
	"github.com/oswaldlabs/sitechat/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
