package iostatus

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/goldfish-inc/perseis-sub001/pkg/errcode"
)

// NotConnectedError creates an error for when status is requested
// without a database connection.
func NotConnectedError() error {
	msg := "Status requested without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// QueryError creates an error for failed status aggregate queries.
func QueryError(err error) error {
	msg := "Failed to query ingestion status"

	return &gn.Error{
		Code: errcode.StatusQueryError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to query status: %w", err),
	}
}
