// Package locale holds the server's user-facing text. It is a compile-time
// selector, not a full i18n system: today there is exactly one table, En.
package locale

import "fmt"

// Locale names a text table. Only En exists; the type exists so a second
// table can be added without touching call sites.
type Locale int

const (
	En Locale = iota
)

// Table is the set of strings and formatters a Locale must provide.
type Table struct {
	Welcome         string
	NicknameTaken   func(login string) string
	PasswordPrompt  func(login string) string
	PasswordCreate  func(login string) string
	WelcomeBack     func(login string) string
	PasswordCreated func(login string) string
	WrongPassword   string
	EmptyPrivate    string
	NoRecipients    string
	UnknownUsers    func(logins []string) string
	UnknownCommand  string
	ObserverMuted   string
	Help            string
}

// For returns the text table for l. Unknown locales fall back to En.
func For(l Locale) Table {
	switch l {
	default:
		return enTable
	}
}

var enTable = Table{
	Welcome: "Welcome to the Mafia server!\nPlease enter your nickname: ",
	NicknameTaken: func(login string) string {
		return fmt.Sprintf("Player \"%s\" is already online.\nPlease enter your nickname: ", login)
	},
	PasswordPrompt: func(login string) string {
		return fmt.Sprintf("Password for \"%s\": ", login)
	},
	PasswordCreate: func(login string) string {
		return fmt.Sprintf("Creating player \"%s\". Enter password: ", login)
	},
	WelcomeBack: func(login string) string {
		return fmt.Sprintf("Welcome back, %s!\n", login)
	},
	PasswordCreated: func(login string) string {
		return fmt.Sprintf("Password created. Welcome, %s!\n", login)
	},
	WrongPassword:  "Incorrect password.\nPlease enter your nickname: ",
	EmptyPrivate:   "Can't send an empty private message.\n",
	NoRecipients:   "No recipients in your private message.\n",
	UnknownCommand: "Unknown command.\n",
	ObserverMuted:  "You are observer, you can not use chat.\n",
	UnknownUsers: func(logins []string) string {
		out := "Unknown user(s): "
		for i, l := range logins {
			if i > 0 {
				out += ", "
			}
			out += l
		}
		return out + "\n"
	},
	Help: HelpEN,
}

// HelpEN is the static text sent in response to the "!help" command.
const HelpEN = `Commands:
  !help     show this text
  !quit     disconnect
  !list     list players and their role
  !observe  become an observer (muted from chat until you !play)
  !play     become an active player
  !pause    pause the current round, if any
  !start    start the game
  +login body...   send a private message to one or more logins
  !!text    perform a game action
`
