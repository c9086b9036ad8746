// Command planiflow schedules project files from the command line.
package main

import "github.com/papapumpkin/planiflow/cmd"

func main() {
	cmd.Execute()
}
