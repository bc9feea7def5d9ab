package main

import "pantryscan/process/sanitize"

func main() {
	sanitize.Run()
}
