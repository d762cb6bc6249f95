package parser

import (
	"nginxlog/internal/model"
)

// assemble copies converted values into a record. It cannot fail: every
// value has already been validated.
func assemble(values []Value) model.LogRecord {
	var rec model.LogRecord
	for _, v := range values {
		switch v.Kind {
		case FieldRemoteAddr:
			rec.RemoteAddr = v.Str
		case FieldIdent:
			rec.Ident = v.Text
		case FieldRemoteUser:
			rec.RemoteUser = v.Text
		case FieldTimeLocal, FieldTimeISO8601:
			rec.Timestamp = v.Time
		case FieldRequest:
			rec.Method = v.Request.Method
			rec.Path = v.Request.Path
			rec.Protocol = v.Request.Protocol
		case FieldStatus:
			rec.Status = int(v.Int)
		case FieldBodyBytes:
			rec.BodyBytes = v.Int
		case FieldReferer:
			rec.Referer = v.Text
		case FieldUserAgent:
			rec.UserAgent = v.Text
		case FieldHost:
			rec.Host = v.Text
		case FieldRequestTime:
			rec.RequestTime = v.Duration
		}
	}
	return rec
}
