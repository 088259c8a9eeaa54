package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-circulation/circulation/internal/inventory"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/service"
	"github.com/Astemirdum/library-circulation/circulation/internal/sweeper"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"CIRCULATION_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"CIRCULATION_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

// Policies are keyed POLICY_<CLASS>_<FIELD>, e.g. POLICY_STUDENT_LOAN_PERIOD=336h.
type Policies struct {
	Student model.Policy `envconfig:"STUDENT"`
	Teacher model.Policy `envconfig:"TEACHER"`
	Staff   model.Policy `envconfig:"STAFF"`
	Guest   model.Policy `envconfig:"GUEST"`
}

func (p Policies) ByClass() map[model.MembershipClass]model.Policy {
	return map[model.MembershipClass]model.Policy{
		model.ClassStudent: p.Student,
		model.ClassTeacher: p.Teacher,
		model.ClassStaff:   p.Staff,
		model.ClassGuest:   p.Guest,
	}
}

type Config struct {
	Server   HTTPServer      `yaml:"server"`
	Database postgres.DB     `yaml:"db"`
	Kafka    kafka.Config    `yaml:"kafka"`
	Redis    inventory.Redis `yaml:"redis"`
	Log      logger.Log      `yaml:"log"`

	Storage  string          `yaml:"storage" envconfig:"STORAGE"`
	Timezone string          `yaml:"timezone" envconfig:"LIBRARY_TIMEZONE"`
	Service  service.Options `yaml:"service"`
	Sweep    sweeper.Config  `yaml:"sweep"`
	Policy   Policies        `yaml:"policy" envconfig:"POLICY"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config, err := load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func load(ops ...Option) (*Config, error) {
	config := &Config{Policy: defaultPolicies()}
	for _, op := range ops {
		op(config)
	}
	if err := envconfig.Process("", config); err != nil {
		return nil, err
	}
	if config.Storage == "" {
		config.Storage = StoragePostgres
	}
	if config.Storage != StoragePostgres && config.Storage != StorageMemory {
		return nil, errors.Errorf("unknown storage %q", config.Storage)
	}
	for class, p := range config.Policy.ByClass() {
		if p.LoanPeriod <= 0 || p.MaxLoans <= 0 || p.HoldDuration <= 0 {
			return nil, errors.Errorf("policy %s: loan period, max loans and hold duration must be positive", class)
		}
	}
	return config, nil
}

func defaultPolicies() Policies {
	const day = 24 * time.Hour
	base := model.Policy{
		LoanPeriod:            14 * day,
		MaxLoans:              5,
		MaxRenewals:           2,
		FinePerDay:            25,
		MaxFine:               1000,
		MaxUnpaidFine:         500,
		HoldDuration:          3 * day,
		MaxReservations:       5,
		DueSoonLead:           2 * day,
		OverdueNoticeInterval: 7 * day,
	}
	teacher := base
	teacher.LoanPeriod = 28 * day
	teacher.MaxLoans = 15
	teacher.MaxRenewals = 3
	teacher.MaxReservations = 10

	staff := base
	staff.LoanPeriod = 21 * day
	staff.MaxLoans = 10
	staff.MaxRenewals = 3

	guest := base
	guest.LoanPeriod = 7 * day
	guest.MaxLoans = 2
	guest.MaxRenewals = 0
	guest.MaxReservations = 2
	guest.MaxUnpaidFine = 0

	return Policies{Student: base, Teacher: teacher, Staff: staff, Guest: guest}
}

func printConfig(cfg *Config) {
	printable := *cfg
	printable.Database.Password = "***"
	printable.Redis.Password = "***"
	jscfg, _ := json.MarshalIndent(printable, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
