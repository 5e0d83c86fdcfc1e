package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name. For sqlite this is the file path
	// (":memory:" for an in-memory database).
	Name string `mapstructure:"name" default:"shopsync"`
	// TimeoutSeconds is the connection/read/write timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxOpenConns caps the connection pool. The pool is shared across all
	// concurrent sync runs, so batch upsert concurrency must stay well
	// below this value.
	MaxOpenConns int `mapstructure:"max_open_conns" default:"100"`
	// MaxIdleConns is the number of idle connections to keep.
	MaxIdleConns int `mapstructure:"max_idle_conns" default:"10"`
}
