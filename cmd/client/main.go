// cmd/client/main.go
package main

import (
	"surveysync/cmd/client/cmd"
)

func main() {
	cmd.Execute()
}
