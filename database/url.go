package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL points baseURL at databaseName.
// Existing query parameters are preserved and sslmode=disable is added when no sslmode is given.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + databaseName
	}

	u.Path = "/" + databaseName
	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String()
}
