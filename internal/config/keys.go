package config

// Setting keys.
const (
	KeyFontName           = "textEditing.font.name"
	KeyFontSize           = "textEditing.font.size"
	KeyTabWidth           = "textEditing.defaultTabWidth"
	KeyIndentType         = "textEditing.indentOption.indentType"
	KeyIndentSpaceCount   = "textEditing.indentOption.spaceCount"
	KeyLineHeight         = "textEditing.lineHeightMultiple"
	KeyWrapLines          = "textEditing.wrapLinesToEditorWidth"
	KeyLetterSpacing      = "textEditing.letterSpacing"
	KeyBracketMode        = "textEditing.bracketHighlight.highlightType"
	KeyBracketCustomColor = "textEditing.bracketHighlight.useCustomColor"
	KeyBracketColor       = "textEditing.bracketHighlight.color"

	KeyTheme              = "theme.selectedTheme"
	KeyDarkTheme          = "theme.selectedDarkTheme"
	KeyLightTheme         = "theme.selectedLightTheme"
	KeyMatchAppearance    = "theme.matchAppearance"
	KeyUseThemeBackground = "theme.useThemeBackground"

	KeyAutoSaveDelay = "files.autoSaveDelay"
	KeyLogLevel      = "logging.level"
)

// IndentType selects tab or space indentation.
type IndentType string

const (
	IndentSpaces IndentType = "spaces"
	IndentTab    IndentType = "tab"
)

// BracketMode selects how matching brackets are highlighted.
type BracketMode string

const (
	BracketDisabled  BracketMode = "disabled"
	BracketFlash     BracketMode = "flash"
	BracketBordered  BracketMode = "bordered"
	BracketUnderline BracketMode = "underline"
)
