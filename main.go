package main

import "github.com/lockerstudio/itemshop-scrap/cmd"

func main() {
	cmd.Execute()
}
