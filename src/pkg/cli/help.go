package cli

import "fmt"

// printHelp prints the help message based on the provided arguments
func (c *CLI) printHelp(args []string) {
	switch len(args) {
	case 0:
		c.showGeneralHelp()
	case 1:
		c.showScopeHelp(args[0])
	case 2:
		c.showOperationHelp(args[0], args[1])
	default:
		fmt.Println("Invalid help command. Use 'help [scope] [operation]'")
	}
}

// showGeneralHelp displays an overview of all available commands grouped by scope
func (c *CLI) showGeneralHelp() {
	fmt.Println("Command syntax: <scope> <operation> [arguments]")
	fmt.Println("\nAvailable commands:")
	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			fmt.Printf("\n%s:\n", cmd.Scope)
			currentScope = cmd.Scope
		}
		fmt.Printf("  %-15s %s\n", cmd.Operation, cmd.ShortDesc)
	}
}

// showScopeHelp displays help information for all commands within a specific scope
func (c *CLI) showScopeHelp(scope string) {
	fmt.Printf("Commands for %s:\n\n", scope)
	for _, cmd := range commandHelps {
		if cmd.Scope == scope {
			fmt.Printf("%-15s %s\n", cmd.Operation, cmd.ShortDesc)
		}
	}
}

// showOperationHelp displays detailed help information for a specific operation within a scope
func (c *CLI) showOperationHelp(scope, operation string) {
	for _, cmd := range commandHelps {
		if cmd.Scope == scope && cmd.Operation == operation {
			fmt.Printf("Command: %s %s\n", scope, operation)
			fmt.Printf("Description: %s\n", cmd.LongDesc)
			fmt.Printf("Syntax: %s\n", cmd.Syntax)
			if len(cmd.Arguments) > 0 {
				fmt.Println("Arguments:")
				for _, arg := range cmd.Arguments {
					fmt.Printf("  %s\n", arg)
				}
			}
			if len(cmd.Examples) > 0 {
				fmt.Println("Examples:")
				for _, ex := range cmd.Examples {
					fmt.Printf("  %s\n", ex)
				}
			}
			return
		}
	}
	fmt.Printf("No help found for %s %s\n", scope, operation)
}

// CommandHelp represents the structure of help information for a specific command.
type CommandHelp struct {
	Scope     string
	Operation string
	ShortDesc string
	LongDesc  string
	Syntax    string
	Arguments []string
	Examples  []string
}

// commandHelps is a slice of CommandHelp structs containing help information for all commands.
var commandHelps = []CommandHelp{
	{
		Scope:     "user",
		Operation: "add",
		ShortDesc: "Add a new user",
		LongDesc:  "Creates a new user account with the specified username and password.",
		Syntax:    "user add <username> <password>",
		Arguments: []string{"username: The name of the new user", "password: The password for the new user"},
		Examples:  []string{"user add jane secret_password"},
	},
	{
		Scope:     "user",
		Operation: "select",
		ShortDesc: "Select a user",
		LongDesc:  "Authenticates and selects the specified user, loading their outline. Without arguments, deselects the current user.",
		Syntax:    "user select [username] [password]",
		Arguments: []string{"username: The name of the user to select", "password: The user's password"},
		Examples:  []string{"user select jane secret_password", "user select"},
	},
	{
		Scope:     "user",
		Operation: "password",
		ShortDesc: "Change the password",
		LongDesc:  "Changes the password of the currently selected user.",
		Syntax:    "user password <new-password>",
		Arguments: []string{"new-password: The new password"},
		Examples:  []string{"user password better_secret"},
	},
	{
		Scope:     "user",
		Operation: "delete",
		ShortDesc: "Delete the current user",
		LongDesc:  "Deletes the currently selected user together with their outline and all stored attachments.",
		Syntax:    "user delete",
		Examples:  []string{"user delete"},
	},
	{
		Scope:     "chapter",
		Operation: "add",
		ShortDesc: "Add a new chapter",
		LongDesc:  "Appends a new chapter to the outline.",
		Syntax:    "chapter add <title> [description]",
		Arguments: []string{"title: The chapter title", "description: (Optional) A free-form description"},
		Examples:  []string{"chapter add Introduction", "chapter add Methods \"How the study was run\""},
	},
	{
		Scope:     "chapter",
		Operation: "rename",
		ShortDesc: "Rename the selected chapter",
		LongDesc:  "Updates the title and description of the currently selected chapter.",
		Syntax:    "chapter rename <title> [description]",
		Arguments: []string{"title: The new title", "description: (Optional) The new description"},
		Examples:  []string{"chapter rename Background"},
	},
	{
		Scope:     "chapter",
		Operation: "delete",
		ShortDesc: "Delete a chapter",
		LongDesc:  "Deletes a chapter together with its subchapters, diagrams and documents. Stored payloads are removed from the blob store.",
		Syntax:    "chapter delete <chapter>",
		Arguments: []string{"chapter: The chapter's list index or id"},
		Examples:  []string{"chapter delete 2"},
	},
	{
		Scope:     "chapter",
		Operation: "select",
		ShortDesc: "Select a chapter",
		LongDesc:  "Selects a chapter, clearing any subchapter selection. Without arguments, clears the selection.",
		Syntax:    "chapter select [chapter]",
		Arguments: []string{"chapter: The chapter's list index or id"},
		Examples:  []string{"chapter select 1", "chapter select"},
	},
	{
		Scope:     "chapter",
		Operation: "expand",
		ShortDesc: "Toggle chapter expansion",
		LongDesc:  "Toggles the expanded/collapsed display state of a chapter.",
		Syntax:    "chapter expand [chapter]",
		Arguments: []string{"chapter: (Optional) The chapter's list index or id. Defaults to the selected chapter"},
		Examples:  []string{"chapter expand", "chapter expand 3"},
	},
	{
		Scope:     "chapter",
		Operation: "list",
		ShortDesc: "List chapters",
		LongDesc:  "Lists all chapters of the outline with the current selection marked.",
		Syntax:    "chapter list",
		Examples:  []string{"chapter list"},
	},
	{
		Scope:     "chapter",
		Operation: "view",
		ShortDesc: "View a chapter",
		LongDesc:  "Shows a chapter's details including its subchapters and attachment counts.",
		Syntax:    "chapter view [chapter]",
		Arguments: []string{"chapter: (Optional) The chapter's list index or id. Defaults to the selected chapter"},
		Examples:  []string{"chapter view", "chapter view 2"},
	},
	{
		Scope:     "subchapter",
		Operation: "add",
		ShortDesc: "Add a subchapter",
		LongDesc:  "Appends a new subchapter to the currently selected chapter.",
		Syntax:    "subchapter add <title> [description]",
		Arguments: []string{"title: The subchapter title", "description: (Optional) A free-form description"},
		Examples:  []string{"subchapter add \"Data collection\""},
	},
	{
		Scope:     "subchapter",
		Operation: "rename",
		ShortDesc: "Rename the selected subchapter",
		LongDesc:  "Updates the title and description of the currently selected subchapter.",
		Syntax:    "subchapter rename <title> [description]",
		Examples:  []string{"subchapter rename Sampling"},
	},
	{
		Scope:     "subchapter",
		Operation: "delete",
		ShortDesc: "Delete a subchapter",
		LongDesc:  "Deletes a subchapter of the selected chapter together with its attachments.",
		Syntax:    "subchapter delete <subchapter>",
		Arguments: []string{"subchapter: The subchapter's list index or id"},
		Examples:  []string{"subchapter delete 1"},
	},
	{
		Scope:     "subchapter",
		Operation: "select",
		ShortDesc: "Select a subchapter",
		LongDesc:  "Selects a subchapter of the currently selected chapter. Without arguments, clears the subchapter selection.",
		Syntax:    "subchapter select [subchapter]",
		Arguments: []string{"subchapter: The subchapter's list index or id"},
		Examples:  []string{"subchapter select 2", "subchapter select"},
	},
	{
		Scope:     "subchapter",
		Operation: "list",
		ShortDesc: "List subchapters",
		LongDesc:  "Lists the subchapters of the currently selected chapter.",
		Syntax:    "subchapter list",
		Examples:  []string{"subchapter list"},
	},
	{
		Scope:     "diagram",
		Operation: "add",
		ShortDesc: "Add a diagram",
		LongDesc:  "Attaches a diagram to the selected chapter or subchapter. Text diagrams carry their source inline; image diagrams are read from a file and stored in the blob store, falling back to inline storage when it is unavailable.",
		Syntax:    "diagram add text <title> <source> | diagram add image <title> <file>",
		Arguments: []string{"title: The diagram title", "source: The diagram source text", "file: Path to an image file"},
		Examples:  []string{"diagram add text Flow \"graph TD; A-->B\"", "diagram add image Architecture ./arch.png"},
	},
	{
		Scope:     "diagram",
		Operation: "update",
		ShortDesc: "Update a diagram",
		LongDesc:  "Replaces the content of an existing diagram, keeping its title and identity.",
		Syntax:    "diagram update <diagram> <source-or-file>",
		Arguments: []string{"diagram: The diagram's list index, id or title"},
		Examples:  []string{"diagram update 1 \"graph TD; A-->C\""},
	},
	{
		Scope:     "diagram",
		Operation: "delete",
		ShortDesc: "Delete a diagram",
		LongDesc:  "Removes a diagram from the selected node and deletes its stored payload.",
		Syntax:    "diagram delete <diagram>",
		Examples:  []string{"diagram delete Flow"},
	},
	{
		Scope:     "diagram",
		Operation: "view",
		ShortDesc: "View a diagram",
		LongDesc:  "Shows a diagram's details and content. Image payloads are resolved from the blob store or the inline fallback.",
		Syntax:    "diagram view <diagram>",
		Examples:  []string{"diagram view 1"},
	},
	{
		Scope:     "diagram",
		Operation: "list",
		ShortDesc: "List diagrams",
		LongDesc:  "Lists the diagrams attached to the selected chapter or subchapter.",
		Syntax:    "diagram list",
		Examples:  []string{"diagram list"},
	},
	{
		Scope:     "document",
		Operation: "add",
		ShortDesc: "Add a document",
		LongDesc:  "Attaches a PDF or slide deck to the selected chapter or subchapter. The document kind is derived from the file's MIME type.",
		Syntax:    "document add <title> <file> [description]",
		Arguments: []string{"title: The document title", "file: Path to a PDF or presentation file"},
		Examples:  []string{"document add Paper ./paper.pdf", "document add Slides ./talk.pptx \"Conference talk\""},
	},
	{
		Scope:     "document",
		Operation: "update",
		ShortDesc: "Update a document",
		LongDesc:  "Replaces the file of an existing document, keeping its title and identity.",
		Syntax:    "document update <document> <file>",
		Examples:  []string{"document update Paper ./paper-v2.pdf"},
	},
	{
		Scope:     "document",
		Operation: "delete",
		ShortDesc: "Delete a document",
		LongDesc:  "Removes a document from the selected node and deletes its stored payload.",
		Syntax:    "document delete <document>",
		Examples:  []string{"document delete Paper"},
	},
	{
		Scope:     "document",
		Operation: "view",
		ShortDesc: "View a document",
		LongDesc:  "Shows a document's details and payload size.",
		Syntax:    "document view <document>",
		Examples:  []string{"document view 1"},
	},
	{
		Scope:     "document",
		Operation: "list",
		ShortDesc: "List documents",
		LongDesc:  "Lists the documents attached to the selected chapter or subchapter.",
		Syntax:    "document list",
		Examples:  []string{"document list"},
	},
	{
		Scope:     "outline",
		Operation: "view",
		ShortDesc: "View the outline tree",
		LongDesc:  "Displays the whole outline as an indented tree. Collapsed chapters hide their subchapters.",
		Syntax:    "outline view",
		Examples:  []string{"outline view"},
	},
	{
		Scope:     "outline",
		Operation: "export",
		ShortDesc: "Export the outline to a file",
		LongDesc:  "Exports the outline to JSON, XML or a standalone HTML page. Relative filenames are placed in the export directory.",
		Syntax:    "outline export <filename> [json|xml|html]",
		Arguments: []string{"filename: The name of the file to save to", "format: (Optional) 'json', 'xml' or 'html'. Defaults to 'json'"},
		Examples:  []string{"outline export thesis.json", "outline export thesis.html html"},
	},
	{
		Scope:     "outline",
		Operation: "import",
		ShortDesc: "Import an outline from a file",
		LongDesc:  "Imports an outline from a JSON or XML file, replacing the current one. Stored payloads of the replaced outline are deleted.",
		Syntax:    "outline import <filename> [json|xml]",
		Arguments: []string{"filename: The name of the file to import from", "format: (Optional) 'json' or 'xml'. Defaults to 'json'"},
		Examples:  []string{"outline import thesis.json"},
	},
	{
		Scope:     "inbox",
		Operation: "list",
		ShortDesc: "List inbox files",
		LongDesc:  "Lists files dropped into the attachment inbox directory that have not been attached yet.",
		Syntax:    "inbox list",
		Examples:  []string{"inbox list"},
	},
	{
		Scope:     "system",
		Operation: "exit",
		ShortDesc: "Exit the program",
		LongDesc:  "Exits Chapterforge, saving all changes.",
		Syntax:    "system exit",
		Examples:  []string{"system exit"},
	},
	{
		Scope:     "system",
		Operation: "quit",
		ShortDesc: "Quit the program",
		LongDesc:  "Quits Chapterforge, saving all changes. Equivalent to 'system exit'.",
		Syntax:    "system quit",
		Examples:  []string{"system quit"},
	},
}
