package formula

import "github.com/edvalho/recipelint/pkg/models"

// MethodSig is the signature of one allowlisted method: the legal argument
// count range and the static type of its result.
type MethodSig struct {
	MinArgs int
	MaxArgs int
	Result  models.FieldType
}

// allowlist is the per-type method transition table. Type checking threads a
// chain's type through it call by call; a name absent from the current type's
// entry is a disallowed method. Adding a method is a data change here, never
// a code branch.
var allowlist = map[models.FieldType]map[string]MethodSig{
	models.FieldTypeString: {
		"upcase":      {0, 0, models.FieldTypeString},
		"downcase":    {0, 0, models.FieldTypeString},
		"capitalize":  {0, 0, models.FieldTypeString},
		"strip":       {0, 0, models.FieldTypeString},
		"lstrip":      {0, 0, models.FieldTypeString},
		"rstrip":      {0, 0, models.FieldTypeString},
		"reverse":     {0, 0, models.FieldTypeString},
		"length":      {0, 0, models.FieldTypeInteger},
		"to_i":        {0, 0, models.FieldTypeInteger},
		"to_f":        {0, 0, models.FieldTypeNumber},
		"to_s":        {0, 0, models.FieldTypeString},
		"split":       {0, 1, models.FieldTypeArray},
		"slice":       {1, 2, models.FieldTypeString},
		"first":       {0, 1, models.FieldTypeString},
		"last":        {0, 1, models.FieldTypeString},
		"gsub":        {2, 2, models.FieldTypeString},
		"sub":         {2, 2, models.FieldTypeString},
		"include?":    {1, 1, models.FieldTypeBoolean},
		"starts_with": {1, 1, models.FieldTypeBoolean},
		"ends_with":   {1, 1, models.FieldTypeBoolean},
		"present?":    {0, 0, models.FieldTypeBoolean},
		"blank?":      {0, 0, models.FieldTypeBoolean},
		"pluralize":   {0, 0, models.FieldTypeString},
		"singularize": {0, 0, models.FieldTypeString},
		"ljust":       {1, 2, models.FieldTypeString},
		"rjust":       {1, 2, models.FieldTypeString},
	},
	models.FieldTypeInteger: {
		"to_s":     {0, 0, models.FieldTypeString},
		"to_f":     {0, 0, models.FieldTypeNumber},
		"to_i":     {0, 0, models.FieldTypeInteger},
		"abs":      {0, 0, models.FieldTypeInteger},
		"even?":    {0, 0, models.FieldTypeBoolean},
		"odd?":     {0, 0, models.FieldTypeBoolean},
		"zero?":    {0, 0, models.FieldTypeBoolean},
		"present?": {0, 0, models.FieldTypeBoolean},
		"blank?":   {0, 0, models.FieldTypeBoolean},
	},
	models.FieldTypeNumber: {
		"to_s":     {0, 0, models.FieldTypeString},
		"to_i":     {0, 0, models.FieldTypeInteger},
		"to_f":     {0, 0, models.FieldTypeNumber},
		"abs":      {0, 0, models.FieldTypeNumber},
		"round":    {0, 1, models.FieldTypeNumber},
		"ceil":     {0, 0, models.FieldTypeInteger},
		"floor":    {0, 0, models.FieldTypeInteger},
		"zero?":    {0, 0, models.FieldTypeBoolean},
		"present?": {0, 0, models.FieldTypeBoolean},
		"blank?":   {0, 0, models.FieldTypeBoolean},
	},
	models.FieldTypeBoolean: {
		"to_s":     {0, 0, models.FieldTypeString},
		"present?": {0, 0, models.FieldTypeBoolean},
		"blank?":   {0, 0, models.FieldTypeBoolean},
	},
	models.FieldTypeArray: {
		"first":      {0, 1, models.FieldTypeUnknown},
		"last":       {0, 1, models.FieldTypeUnknown},
		"length":     {0, 0, models.FieldTypeInteger},
		"size":       {0, 0, models.FieldTypeInteger},
		"join":       {0, 1, models.FieldTypeString},
		"smart_join": {0, 1, models.FieldTypeString},
		"compact":    {0, 0, models.FieldTypeArray},
		"uniq":       {0, 0, models.FieldTypeArray},
		"flatten":    {0, 0, models.FieldTypeArray},
		"reverse":    {0, 0, models.FieldTypeArray},
		"sort":       {0, 0, models.FieldTypeArray},
		"pluck":      {1, 1, models.FieldTypeArray},
		"where":      {1, 1, models.FieldTypeArray},
		"sum":        {0, 0, models.FieldTypeNumber},
		"max":        {0, 0, models.FieldTypeUnknown},
		"min":        {0, 0, models.FieldTypeUnknown},
		"present?":   {0, 0, models.FieldTypeBoolean},
		"blank?":     {0, 0, models.FieldTypeBoolean},
	},
	models.FieldTypeObject: {
		"keys":     {0, 0, models.FieldTypeArray},
		"values":   {0, 0, models.FieldTypeArray},
		"to_s":     {0, 0, models.FieldTypeString},
		"present?": {0, 0, models.FieldTypeBoolean},
		"blank?":   {0, 0, models.FieldTypeBoolean},
	},
	models.FieldTypeNull: {
		"to_s":     {0, 0, models.FieldTypeString},
		"present?": {0, 0, models.FieldTypeBoolean},
		"blank?":   {0, 0, models.FieldTypeBoolean},
	},
}

// LookupMethod finds the signature of a method on a thread type.
func LookupMethod(t models.FieldType, name string) (MethodSig, bool) {
	methods, ok := allowlist[t]
	if !ok {
		return MethodSig{}, false
	}

	sig, ok := methods[name]

	return sig, ok
}

// AllowedPairs enumerates every legal (type, method) pair, mostly for tests
// and documentation tooling.
func AllowedPairs() map[models.FieldType][]string {
	out := make(map[models.FieldType][]string, len(allowlist))
	for t, methods := range allowlist {
		names := make([]string, 0, len(methods))
		for name := range methods {
			names = append(names, name)
		}

		out[t] = names
	}

	return out
}
