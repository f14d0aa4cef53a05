package classify

const segmentScripts = `\.(tsx|jsx|js|ts)$`

var sourceScripts = []string{"ts", "tsx", "js", "jsx"}

// segmentFile matches a special App Router file at any depth below app/.
func segmentFile(baseName string, extensions string) string {
	return `^app/(.+/)?` + baseName + extensions
}

// defaultRules describes a Next.js App Router project.
var defaultRules = []Rule{
	{Label: "API routes", Description: "Route handlers of the App Router that serve HTTP endpoints.", Kind: KindDirectory, Prefixes: []string{"app/api/"}},
	{Label: "App Router route", Description: "Routing and UI tree of the App Router. Segments hold page, layout, and error files.", Kind: KindDirectory, Prefixes: []string{"app/"}},
	{Label: "Static assets", Description: "Public files served as is, such as /favicon.ico.", Kind: KindDirectory, Prefixes: []string{"public/"}},
	{Label: "UI components", Description: "Reusable presentational components.", Kind: KindDirectory, Prefixes: []string{"components/"}},
	{Label: "Library/utilities", Description: "Business logic and utility functions.", Kind: KindDirectory, Prefixes: []string{"lib/"}},
	{Label: "Directory", Kind: KindDirectory},

	{Label: "Page (route)", Description: "Page component mapped directly to a URL.", Kind: KindFile, Pattern: segmentFile("page", segmentScripts)},
	{Label: "Layout", Description: "Shared UI wrapping the segment and its children.", Kind: KindFile, Pattern: segmentFile("layout", segmentScripts)},
	{Label: "Template", Description: "Layout-like UI that is recreated on every mount.", Kind: KindFile, Pattern: segmentFile("template", segmentScripts)},
	{Label: "Loading UI", Description: "Component shown while the segment is loading.", Kind: KindFile, Pattern: segmentFile("loading", segmentScripts)},
	{Label: "Error UI", Description: "Error boundary for the segment.", Kind: KindFile, Pattern: segmentFile("error", segmentScripts)},
	{Label: "404 UI", Description: "Not-found view for the segment.", Kind: KindFile, Pattern: segmentFile("not-found", segmentScripts)},
	{Label: "Parallel route default", Description: "Fallback view for an unmatched parallel route slot.", Kind: KindFile, Pattern: segmentFile("default", segmentScripts)},
	{Label: "Route handler (API)", Description: "API route defining a handler per HTTP method.", Kind: KindFile, Pattern: segmentFile("route", `\.(ts|js)$`)},
	{Label: "Middleware", Description: "Request preprocessing such as localization or authorization.", Kind: KindFile, Names: []string{"middleware.ts", "middleware.js"}},

	{Label: "Next.js config", Description: "Project-wide Next.js settings.", Kind: KindFile, Names: []string{"next.config.js", "next.config.ts", "next.config.mjs"}},
	{Label: "Tailwind config", Description: "Tailwind CSS settings.", Kind: KindFile, Names: []string{"tailwind.config.js", "tailwind.config.ts"}},
	{Label: "PostCSS config", Description: "PostCSS settings.", Kind: KindFile, Names: []string{"postcss.config.js", "postcss.config.cjs", "postcss.config.mjs"}},
	{Label: "TypeScript config", Description: "TypeScript compiler settings.", Kind: KindFile, Names: []string{"tsconfig.json"}},
	{Label: "Package manifest", Description: "Dependencies, scripts, and package metadata.", Kind: KindFile, Names: []string{"package.json"}},
	{Label: "Global CSS", Description: "Styles applied to the whole application.", Kind: KindFile, Names: []string{"globals.css"}},
	{Label: "robots.txt", Description: "Crawl rules for search engine robots.", Kind: KindFile, Names: []string{"robots.txt"}},
	{Label: "Sitemap", Description: "URL list for search engines.", Kind: KindFile, Names: []string{"sitemap.xml"}},
	{Label: "Site icon", Description: "Icon used by browsers and installed web apps.", Kind: KindFile, Pattern: `(^|/)icon\.(png|ico|svg)$`},
	{Label: "Site icon", Description: "Icon used by browsers and installed web apps.", Kind: KindFile, Names: []string{"favicon.ico"}},

	{Label: "UI component", Description: "Reusable component.", Kind: KindFile, Prefixes: []string{"components/"}, Extensions: sourceScripts},
	{Label: "Utility/logic", Description: "Functions and service layer code.", Kind: KindFile, Prefixes: []string{"lib/"}, Extensions: []string{"ts", "js"}},
	{Label: "Static asset", Description: "File served as is.", Kind: KindFile, Prefixes: []string{"public/"}},

	{Label: "Source code", Kind: KindFile, Extensions: sourceScripts},
	{Label: "Stylesheet", Kind: KindFile, Extensions: []string{"css", "scss"}},
	{Label: "Documentation", Kind: KindFile, Extensions: []string{"md", "mdx"}},
	{Label: "Config/data (JSON)", Kind: KindFile, Extensions: []string{"json"}},
}

// Default returns the built-in table for Next.js App Router projects.
func Default() Table {
	table, tableError := NewTable(defaultRules)
	if tableError != nil {
		panic(tableError)
	}
	return table
}
