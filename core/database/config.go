package database

// Config holds configuration for the snapshot database.
type Config struct {
	// Driver is mysql or sqlite.
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"dat-manager.db"`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// BatchSize is the number of rows per insert during export.
	BatchSize int `mapstructure:"batch_size" default:"500"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)
