package remote

import "regexp"

// Names are embedded in query and command text, so only the unquoted
// system name character set is accepted. Quoted names (which may carry
// arbitrary characters) are not supported.
var (
	// objectNamePattern matches an unquoted IBM i object, library or
	// user profile name: up to ten characters, starting with a letter
	// or one of $ # @.
	objectNamePattern = regexp.MustCompile(`^[A-Z$#@][A-Z0-9$#@_.]{0,9}$`)

	// jobIdentifierPattern matches a qualified job name,
	// number/user/name.
	jobIdentifierPattern = regexp.MustCompile(`^[0-9]{6}/[A-Z0-9$#@_.]{1,10}/[A-Z0-9$#@_.]{1,10}$`)
)

func validObjectName(name string) bool {
	return objectNamePattern.MatchString(name)
}

func validJobIdentifier(identifier string) bool {
	return jobIdentifierPattern.MatchString(identifier)
}
