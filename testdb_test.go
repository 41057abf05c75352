package schemer

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"runtime"
	"testing"

	// Database drivers for each TestDB
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/ory/dockertest/v3"
)

const (
	PostgresDriverName = "postgres"
	SQLiteDriverName   = "sqlite3"
	MySQLDriverName    = "mysql"
	MSSQLDriverName    = "sqlserver"
)

// TestDBs holds all of the specific database instances against which tests
// will run. The connectDB test helper references the keys of this map, and
// the withEachTestDB helper runs tests against every database defined here.
var TestDBs = map[string]*TestDB{
	"postgres:latest": {
		Dialect:    Postgres,
		Driver:     PostgresDriverName,
		DockerRepo: "postgres",
		DockerTag:  "latest",
	},
	"mysql:latest": {
		Dialect:    MySQL,
		Driver:     MySQLDriverName,
		DockerRepo: "mysql",
		DockerTag:  "latest",
	},
	"mssql:2022-latest": {
		Dialect:    MSSQL,
		Driver:     MSSQLDriverName,
		DockerRepo: "mcr.microsoft.com/mssql/server",
		DockerTag:  "2022-latest",
	},
	"sqlite": {
		Dialect: SQLite,
		Driver:  SQLiteDriverName,
	},
}

// TestDB represents a specific database instance against which we would like
// to run reconciliation tests.
type TestDB struct {
	Dialect    Dialect
	Driver     string
	DockerRepo string
	DockerTag  string
	Resource   *dockertest.Resource
	path       string
}

func (c *TestDB) Username() string {
	switch c.Driver {
	case MSSQLDriverName:
		return "SA"
	default:
		return "schemeruser"
	}
}

func (c *TestDB) Password() string {
	switch c.Driver {
	case MSSQLDriverName:
		return "Th1sI5AMor3_Compl1c4tedPasswd!"
	default:
		return "schemersecret"
	}
}

func (c *TestDB) DatabaseName() string {
	switch c.Driver {
	case MSSQLDriverName:
		return "master"
	default:
		return "schemertests"
	}
}

// Port asks Docker for the host-side port we can use to connect to the
// relevant container's database port.
func (c *TestDB) Port() string {
	switch c.Driver {
	case MySQLDriverName:
		return c.Resource.GetPort("3306/tcp")
	case PostgresDriverName:
		return c.Resource.GetPort("5432/tcp")
	case MSSQLDriverName:
		return c.Resource.GetPort("1433/tcp")
	}
	return ""
}

func (c *TestDB) IsDocker() bool {
	return c.DockerRepo != "" && c.DockerTag != ""
}

func (c *TestDB) IsSQLite() bool {
	return c.Driver == SQLiteDriverName
}

// IsRunnable reports whether this database can be tested in the current
// environment. Docker databases need SCHEMER_DOCKER_TESTS, and the SQL
// Server image is only published for amd64.
func (c *TestDB) IsRunnable() bool {
	if !c.IsDocker() {
		return true
	}
	if !dockerTestsEnabled() {
		return false
	}
	return c.Driver != MSSQLDriverName || runtime.GOARCH == "amd64"
}

// DockerEnvars computes the environment variables that are needed for a
// docker instance.
func (c *TestDB) DockerEnvars() []string {
	switch c.Driver {
	case PostgresDriverName:
		return []string{
			fmt.Sprintf("POSTGRES_USER=%s", c.Username()),
			fmt.Sprintf("POSTGRES_PASSWORD=%s", c.Password()),
			fmt.Sprintf("POSTGRES_DB=%s", c.DatabaseName()),
		}
	case MySQLDriverName:
		return []string{
			"MYSQL_RANDOM_ROOT_PASSWORD=true",
			fmt.Sprintf("MYSQL_USER=%s", c.Username()),
			fmt.Sprintf("MYSQL_PASSWORD=%s", c.Password()),
			fmt.Sprintf("MYSQL_DATABASE=%s", c.DatabaseName()),
		}
	case MSSQLDriverName:
		return []string{
			"ACCEPT_EULA=Y",
			fmt.Sprintf("MSSQL_SA_PASSWORD=%s", c.Password()),
		}
	default:
		return []string{}
	}
}

// Path computes the full path to the database on disk (applies only to SQLite
// instances).
func (c *TestDB) Path() string {
	switch c.Driver {
	case SQLiteDriverName:
		if c.path == "" {
			tmpF, _ := os.CreateTemp("", "schemer.*.sqlite3")
			c.path = tmpF.Name()
			_ = tmpF.Close()
		}
		return c.path
	default:
		return ""
	}
}

func (c *TestDB) DSN() string {
	switch c.Driver {
	case PostgresDriverName:
		return fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", c.Username(), c.Password(), c.Port(), c.DatabaseName())
	case SQLiteDriverName:
		return c.Path()
	case MySQLDriverName:
		return fmt.Sprintf("%s:%s@(localhost:%s)/%s?parseTime=true", c.Username(), c.Password(), c.Port(), c.DatabaseName())
	case MSSQLDriverName:
		return fmt.Sprintf("sqlserver://%s:%s@localhost:%s/?database=%s", c.Username(), c.Password(), c.Port(), c.DatabaseName())
	}
	return "NoDSN"
}

// Init sets up a test database instance for connections. For dockertest-based
// instances, this function triggers the `docker run` call. For SQLite-based
// test instances, this creates the data file. In all cases, we verify that
// the database is connectable via a test connection.
func (c *TestDB) Init(pool *dockertest.Pool) {
	var err error

	if c.IsDocker() {
		// For Docker-based test databases, we send a startup signal to have Docker
		// launch a container for this test run.
		log.Printf("Starting docker container %s:%s\n", c.DockerRepo, c.DockerTag)

		c.Resource, err = pool.RunWithOptions(&dockertest.RunOptions{
			Repository: c.DockerRepo,
			Tag:        c.DockerTag,
			Env:        c.DockerEnvars(),
		})
		if err != nil {
			log.Fatalf("Could not start container %s:%s: %s", c.DockerRepo, c.DockerTag, err)
		}

		// Even if everything goes OK, kill off the container after n seconds
		_ = c.Resource.Expire(300)

		// Use the pool's exponential backoff helper to wait until connections
		// succeed for this database
		err = pool.Retry(c.ping)
	} else {
		err = c.ping()
	}

	if err != nil {
		log.Fatalf("Could not connect to %s: %s", c.DSN(), err)
	} else {
		log.Printf("Successfully connected to %s", c.DSN())
	}
}

func (c *TestDB) ping() error {
	testConn, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		return err
	}

	// We close the test connection... other code will re-open via the DSN()
	defer func() { _ = testConn.Close() }()
	return testConn.Ping()
}

// Connect creates an additional *database/sql.DB connection for a particular
// test database.
func (c *TestDB) Connect(t *testing.T) *sql.DB {
	db, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		t.Error(err)
	}
	return db
}

// Cleanup should be called after all tests with a database instance are
// complete. For dockertest-based tests, it deletes the docker containers.
// For SQLite tests, it deletes the database file from the temp directory.
func (c *TestDB) Cleanup(pool *dockertest.Pool) {
	var err error

	switch {
	case c.Driver == SQLiteDriverName:
		err = os.Remove(c.Path())
		if os.IsNotExist(err) {
			// Ignore error cleaning up nonexistent file
			err = nil
		}

	case c.IsDocker() && c.Resource != nil && pool != nil:
		err = pool.Purge(c.Resource)
	}

	if err != nil {
		log.Fatalf("Could not cleanup %s: %s", c.DSN(), err)
	}
}
