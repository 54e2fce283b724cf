package main

// Site copy that is not part of the portfolio content file.
var (
	BootSequence = []string{
		"Initializing kernel...",
		"Loading system modules...",
		"Mounting virtual file system...",
		"Establishing secure connection...",
		"Starting network services...",
		"Loading user interface...",
		"Decrypting portfolio data...",
		"Enabling terminal access...",
		"Ready for user interaction...",
	}

	NotFoundLines = []string{
		"bash: cd: No such file or directory",
		"Access denied: Target location not found in filesystem",
		"System error: Invalid path specified",
	}

	PrivacyPolicy = `This site keeps a small amount of anonymous usage data.

Page views are stored with a salted hash of your IP address, never the address itself.
The salt is regenerated every time the server starts, so hashes cannot be linked across restarts.
Terminal commands are counted per command name only. What you type is never stored.
Your terminal scrollback lives in server memory and is discarded after 30 minutes of inactivity.
Browsers sending "Do Not Track" are not recorded at all.
Visit records older than 12 months are deleted automatically.`
)
