package main

import "github.com/vietddude/coach/internal/cli"

func main() {
	cli.Execute()
}
