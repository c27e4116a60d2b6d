// Package appfs embeds the SQL migrations, the common password list and the email templates into the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql passwords/*.txt templates/email/*
var FS embed.FS
