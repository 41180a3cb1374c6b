package app

import (
	"net/url"
	"strings"

	"github.com/lib/pq"
	"github.com/riskibarqy/volleystats/internal/config"
)

const preparedBinaryOption = "disable_prepared_binary_result"

// DatabaseURL returns the lib/pq connection string for cfg. Both URL and
// keyword/value forms are accepted; an explicit prepared binary setting in
// the string wins over the config toggle.
func DatabaseURL(cfg config.Config) string {
	dsn := strings.TrimSpace(cfg.DBURL)
	if !cfg.DBDisablePreparedBinary || dsn == "" {
		return dsn
	}
	return withDSNOption(dsn, preparedBinaryOption, "yes")
}

func withDSNOption(dsn, key, value string) string {
	if !isURLDSN(dsn) {
		if _, ok := keywordValue(dsn, key); ok {
			return dsn
		}
		return dsn + " " + key + "=" + value
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	query := parsed.Query()
	if query.Has(key) {
		return dsn
	}
	query.Set(key, value)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL reports the database name for span attributes, or "".
func dbNameFromURL(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if isURLDSN(dsn) {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return ""
		}
		dsn = converted
	}
	name, _ := keywordValue(dsn, "dbname")
	return name
}

func isURLDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// keywordValue finds key in a space separated key=value DSN. Quoted values
// with spaces are not supported.
func keywordValue(dsn, key string) (string, bool) {
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if ok && k == key {
			return strings.Trim(v, `'"`), true
		}
	}
	return "", false
}
