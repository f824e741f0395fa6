package database

import "net/url"

// ResolveURL sets databaseName as the connection path of baseURL and defaults
// sslmode to disable when the caller has not chosen one. An empty databaseName
// leaves baseURL untouched, so a fully formed DATABASE_URL works without a
// separate DATABASE_NAME.
func ResolveURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	u.Path = "/" + databaseName
	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
		u.RawQuery = query.Encode()
	}

	return u.String()
}
