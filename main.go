package main

import "github.com/reliefworks/floodscan/cmd"

func main() {
	cmd.Execute()
}
