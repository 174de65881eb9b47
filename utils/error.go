package utils

import "errors"

// ErrorRecordNotFound signals a lookup or update that matched no row;
// handlers map it to a 404.
var ErrorRecordNotFound = errors.New("record not found")
