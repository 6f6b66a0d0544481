package config

// Catalog is the full desired state of a provisioned machine, decoded from
// the embedded profiles.yaml.
type Catalog struct {
	Directories          []string           `yaml:"directories"`            // Created under $HOME
	HomebrewInstallerURL string             `yaml:"homebrew_installer_url"` // Used on macOS when brew is missing
	Profiles             map[string]Profile `yaml:"profiles"`               // Keyed by platform tag
	Generic              map[string]Profile `yaml:"generic"`                // Keyed by package manager, for generic-linux
	Shell                Shell              `yaml:"shell"`
	Git                  Git                `yaml:"git"`
}

// Profile is the package set for one OS family.
// - Swaps: packages replaced before anything else is installed (e.g. curl-minimal -> curl).
// - Repos: repository packages installed best-effort before the optional tools (e.g. epel-release).
// - Base: installed in one invocation; failure aborts the run.
// - Optional: "modern CLI" tools, installed one by one, failures only warn.
type Profile struct {
	Swaps       []Swap     `yaml:"swaps"`
	Repos       []string   `yaml:"repos"`
	Base        []string   `yaml:"base"`
	Optional    []string   `yaml:"optional"`
	Container   *Container `yaml:"container"`
	ChshPackage string     `yaml:"chsh_package"` // Package providing chsh, empty if unknown
}

// Swap replaces one installed package with another.
type Swap struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Container describes the container runtime install for a profile.
type Container struct {
	Repo     string   `yaml:"repo"` // Extra repository file to add first
	Packages []string `yaml:"packages"`
	Cask     bool     `yaml:"cask"`    // brew --cask install
	Service  string   `yaml:"service"` // systemd unit to enable and start
	Group    string   `yaml:"group"`   // group the invoking user joins
}

// Shell describes the zsh framework, its plugin/theme repositories and the
// contents rendered into the shell rc files.
type Shell struct {
	FrameworkDir string   `yaml:"framework_dir"` // Relative to $HOME unless $ZSH is set
	InstallerURL string   `yaml:"installer_url"`
	Theme        string   `yaml:"theme"`
	Repos        []Repo   `yaml:"repos"`
	Plugins      []string `yaml:"plugins"` // oh-my-zsh plugins=(...) list
	Aliases      []Alias  `yaml:"aliases"`
}

// Repo is a git repository cloned into the framework's custom directory.
type Repo struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // "plugin" or "theme"
	URL  string `yaml:"url"`
}

// Alias defines a single alias (e.g. ll = ls -alF). Used for both shell and git aliases.
type Alias struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Git holds global git preferences re-applied on every run.
type Git struct {
	Settings []Setting `yaml:"settings"`
	Aliases  []Alias   `yaml:"aliases"`
}

// Setting is one `git config --global key value` pair.
type Setting struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}
