package analyzer

// Catalog is the fixed, ordered rule set every line is evaluated against.
// Order only affects the sequencing of findings — every matching rule always
// fires, so a single line can produce several findings of different
// severities. All substrings are matched case-sensitively.
var Catalog = []Rule{
	{
		Name:     "recursive-delete",
		Severity: Critical,
		Message:  "Recursive file deletion detected",
		Clauses: [][]string{
			{"rm -rf", "rm -fr"},
			{"/*", "/ ", "~", "/home", "/Users"},
		},
	},
	{
		Name:     "eval-dynamic-exec",
		Severity: Critical,
		Message:  "Dynamic code execution with eval",
		Clauses: [][]string{
			{"eval"},
			{"$(", "`"},
		},
	},
	{
		Name:     "base64-decode",
		Severity: Critical,
		Message:  "Base64 decoding detected (possible obfuscation)",
		Clauses: [][]string{
			{"base64"},
			{"-d", "--decode"},
		},
	},
	{
		Name:     "pipe-to-shell",
		Severity: Critical,
		Message:  "Downloading and executing additional scripts",
		Clauses: [][]string{
			{"curl", "wget"},
			{"|"},
			{"bash", "sh"},
		},
	},
	{
		Name:     "sudo",
		Severity: Warning,
		Message:  "Requires root/sudo privileges",
		Clauses: [][]string{
			{"sudo"},
		},
	},
	{
		Name:     "system-directories",
		Severity: Warning,
		Message:  "Modifying system directories",
		Clauses: [][]string{
			{"/etc/", "/usr/local/", "/usr/bin/", "/bin/"},
		},
	},
	{
		Name:     "shell-config",
		Severity: Warning,
		Message:  "Modifying shell configuration files",
		Clauses: [][]string{
			{".bashrc", ".zshrc", ".profile", ".bash_profile", ".zprofile"},
		},
	},
	{
		Name:     "subshell-download",
		Severity: Warning,
		Message:  "Downloading content in subshell",
		Clauses: [][]string{
			{"$(curl", "$(wget", "`curl", "`wget"},
		},
	},
	{
		Name:     "chmod-executable",
		Severity: Warning,
		Message:  "Making files executable",
		Clauses: [][]string{
			{"chmod"},
			{"+x", "777", "755"},
		},
	},
	{
		// Deliberately narrow: a plain PATH=/usr/bin assignment without
		// $PATH on the same line stays silent.
		Name:     "path-modification",
		Severity: Info,
		Message:  "Modifying PATH environment variable",
		Clauses: [][]string{
			{"export PATH=", "PATH="},
			{"$PATH"},
		},
	},
	{
		Name:     "file-download",
		Severity: Info,
		Message:  "Downloading files",
		Clauses: [][]string{
			{"curl", "wget"},
			{"-o", "-O", "--output"},
		},
	},
	{
		Name:     "git-clone",
		Severity: Info,
		Message:  "Cloning git repository",
		Clauses: [][]string{
			{"git clone"},
		},
	},
}
