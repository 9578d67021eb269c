// Package assets provides the theme stylesheets and the HTML document shell.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in themes and shell, compiled in
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── Resolver          - custom first, embedded fallback
//
// A custom directory only needs the files it overrides:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── document.html
//
// The shell is an html/template receiving Lang, Title, Generator,
// RulesVersion, CSS and Body.
//
// # Security
//
// Asset names are restricted to letters, digits, '-' and '_'.
// FilesystemLoader opens files with os.OpenInRoot, confining reads to basePath.
package assets
