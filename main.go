package main

import "github.com/umojalearning/umoja-backend/cmd"

func main() {
	cmd.Execute()
}
