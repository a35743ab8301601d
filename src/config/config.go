package config

import (
	"fmt"
	"os"
	"time"

	"cabins/src/types"

	"github.com/spf13/viper"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const DATE_PARSE_FORMAT = "2006-01-02"

var API_ENV = os.Getenv("API_ENV")

// RoomRate is the configured nightly pricing for one bookable room.
// ChildSurcharge is charged per child per night.
type RoomRate struct {
	ID             uint   `mapstructure:"id"`
	Name           string `mapstructure:"name"`
	NightlyRate    int64  `mapstructure:"nightly_rate"`
	ChildSurcharge int64  `mapstructure:"child_surcharge"`
}

type PropertyRates struct {
	BuyoutNightly   int64      `mapstructure:"buyout_nightly"`
	PerGuestNightly int64      `mapstructure:"per_guest_nightly"`
	Rooms           []RoomRate `mapstructure:"rooms"`
}

// RefundRule maps a days-before-checkin threshold to a refund percentage.
type RefundRule struct {
	DaysBeforeCheckin int    `mapstructure:"days_before_checkin" json:"days_before_checkin"`
	RefundPercentage  int    `mapstructure:"refund_percentage" json:"refund_percentage"`
	Description       string `mapstructure:"description" json:"description"`
}

type RefundPolicy struct {
	Property types.Property    `mapstructure:"property"`
	Mode     types.BookingMode `mapstructure:"mode"`
	Rules    []RefundRule      `mapstructure:"rules"`
}

// Pricing is the injected configuration value the pricing calculator and
// refund evaluator work from. Tests substitute fixtures directly.
type Pricing struct {
	Currency              string                   `mapstructure:"currency"`
	Properties            map[string]PropertyRates `mapstructure:"properties"`
	RefundPolicies        []RefundPolicy           `mapstructure:"refund_policies"`
	HoldTTLMinutes        int                      `mapstructure:"hold_ttl_minutes"`
	SweepIntervalSeconds  int                      `mapstructure:"sweep_interval_seconds"`
	RefundReviewThreshold int64                    `mapstructure:"refund_review_threshold"`
}

func (p *Pricing) Rates(property types.Property) (PropertyRates, bool) {
	r, ok := p.Properties[string(property)]
	return r, ok
}

func (p *Pricing) Room(property types.Property, id uint) (RoomRate, bool) {
	rates, ok := p.Rates(property)
	if !ok {
		return RoomRate{}, false
	}
	for _, room := range rates.Rooms {
		if room.ID == id {
			return room, true
		}
	}
	return RoomRate{}, false
}

// RefundPolicyFor returns the active policy for a property and mode, or nil
// when none is configured (which callers treat as full refund).
func (p *Pricing) RefundPolicyFor(property types.Property, mode types.BookingMode) *RefundPolicy {
	for i := range p.RefundPolicies {
		pol := &p.RefundPolicies[i]
		if pol.Property == property && pol.Mode == mode {
			return pol
		}
	}
	return nil
}

func (p *Pricing) HoldTTL() time.Duration {
	return time.Duration(p.HoldTTLMinutes) * time.Minute
}

func (p *Pricing) SweepInterval() time.Duration {
	return time.Duration(p.SweepIntervalSeconds) * time.Second
}

func defaultPricing() *Pricing {
	rules := []RefundRule{
		{DaysBeforeCheckin: 14, RefundPercentage: 100, Description: "Full refund 14+ days before check-in"},
		{DaysBeforeCheckin: 7, RefundPercentage: 50, Description: "Half refund 7-13 days before check-in"},
		{DaysBeforeCheckin: 0, RefundPercentage: 0, Description: "No refund under 7 days"},
	}
	policies := make([]RefundPolicy, 0, 6)
	for _, prop := range []types.Property{types.PROPERTY_A, types.PROPERTY_B} {
		for _, mode := range []types.BookingMode{types.MODE_BUYOUT, types.MODE_PER_GUEST, types.MODE_PER_ROOM} {
			policies = append(policies, RefundPolicy{Property: prop, Mode: mode, Rules: rules})
		}
	}
	return &Pricing{
		Currency: "usd",
		Properties: map[string]PropertyRates{
			"A": {
				BuyoutNightly:   65000,
				PerGuestNightly: 4500,
				Rooms: []RoomRate{
					{ID: 1, Name: "Lakeside", NightlyRate: 12000, ChildSurcharge: 1500},
					{ID: 2, Name: "Forest", NightlyRate: 10000, ChildSurcharge: 1500},
					{ID: 3, Name: "Loft", NightlyRate: 9000, ChildSurcharge: 1000},
				},
			},
			"B": {
				BuyoutNightly:   48000,
				PerGuestNightly: 3800,
				Rooms: []RoomRate{
					{ID: 11, Name: "North", NightlyRate: 9500, ChildSurcharge: 1200},
					{ID: 12, Name: "South", NightlyRate: 9500, ChildSurcharge: 1200},
				},
			},
		},
		RefundPolicies:        policies,
		HoldTTLMinutes:        15,
		SweepIntervalSeconds:  30,
		RefundReviewThreshold: 50000,
	}
}

var pricing *Pricing

// GetPricing loads the pricing configuration once. A config file
// (booking.yaml, or the path in BOOKING_CONFIG) overrides the built-in
// defaults wholesale; env vars override individual scalar keys.
func GetPricing() *Pricing {
	if pricing != nil {
		return pricing
	}
	v := viper.New()
	if file := os.Getenv("BOOKING_CONFIG"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("booking")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()
	p := defaultPricing()
	if err := v.ReadInConfig(); err == nil {
		loaded := &Pricing{}
		if err := v.Unmarshal(loaded); err == nil {
			p = withDefaults(loaded)
		}
	}
	pricing = p
	return pricing
}

// NewPricing replaces the pricing configuration, for tests.
func NewPricing(p *Pricing) *Pricing {
	pricing = p
	return pricing
}

func withDefaults(p *Pricing) *Pricing {
	def := defaultPricing()
	if p.Currency == "" {
		p.Currency = def.Currency
	}
	if len(p.Properties) == 0 {
		p.Properties = def.Properties
	}
	if len(p.RefundPolicies) == 0 {
		p.RefundPolicies = def.RefundPolicies
	}
	if p.HoldTTLMinutes <= 0 {
		p.HoldTTLMinutes = def.HoldTTLMinutes
	}
	if p.SweepIntervalSeconds <= 0 {
		p.SweepIntervalSeconds = def.SweepIntervalSeconds
	}
	if p.RefundReviewThreshold <= 0 {
		p.RefundReviewThreshold = def.RefundReviewThreshold
	}
	return p
}
