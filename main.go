package main

import "dateflix-backend/cmd"

func main() {
	cmd.Run()
}
