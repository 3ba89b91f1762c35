package main

import "mailsync/cmd"

func main() {
	cmd.Execute()
}
