package terminal

// Canned terminal copy.
var (
	Identity = `Karthigaiselvam ~ $ User privileges detected`

	HelpText = `
Available commands:
  cd [path]            Navigate to a section (e.g., 'cd about' or 'cd /about')
  ls                   List available sections
  pwd                  Show current location
  whoami               Display user info
  clear                Clear terminal
  help                 Show this help message
  date                 Show current time
  decrypt [target]     Decrypt content
  matrix               Toggle matrix animation
  history              View command history

Tip: You can use 'cd about' or 'cd /about' - both work!
`

	ListingText = `
Available directories:
drwxr-xr-x  2 user user  4096 Aug 11 2004 home
drwxr-xr-x  2 user user  4096 Aug 11 2004 about
drwxr-xr-x  2 user user  4096 Aug 11 2004 skills
drwxr-xr-x  2 user user  4096 Aug 11 2004 projects
drwxr-xr-x  2 user user  4096 Aug 11 2004 education
drwxr-xr-x  2 user user  4096 Aug 11 2004 testimonials
drwxr-xr-x  2 user user  4096 Aug 11 2004 contact
`

	MatrixText = `Matrix rain effect toggled`

	DecryptUsage = `Error: Specify target to decrypt. Usage: decrypt [target]`

	WelcomeText = `Navigator v3.0
------------------------------------------------------------------

Welcome to the Elite Dev Terminal!
System initialized: %s

Quick Start:
  help           - Show all available commands
  cd about       - Navigate to about section
  cd projects    - View my projects
  cd skills      - Check out my skills
  cd contact     - Get in touch
  ls             - List all sections

Pro Tips:
  * Use Tab for auto-completion
  * Use Up/Down arrows for command history
  * Both 'cd about' and 'cd /about' work!

Ready to explore? Type a command below!`
)

// DateLayout mirrors an en-US toLocaleString rendering.
const DateLayout = "1/2/2006, 3:04:05 PM"

// completionWords are offered for tab completion, in priority order.
var completionWords = []string{"help", "cd", "ls", "about", "projects", "skills", "contact", "clear", "date", "whoami"}
