package entity

import "time"

// User roles.
const (
	RoleFarmer   = "farmer"
	RoleDriver   = "driver"
	RoleBuyer    = "buyer"
	RoleMinistry = "ministry"
)

// User is a farmer or B2B buyer account. Names are unique
// case-insensitively within a role; the lowercased form is stored in
// NameKey for the uniqueness constraint.
type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	NameKey       string    `json:"-" gorm:"size:100;not null;uniqueIndex:idx_users_role_name"`
	Role          string    `json:"role" gorm:"size:20;not null;uniqueIndex:idx_users_role_name"`
	PasswordHash  string    `json:"-" gorm:"size:256"`
	Email         string    `json:"email,omitempty" gorm:"size:200;index"`
	OAuthUID      string    `json:"-" gorm:"size:128;index"`
	AuthMethod    string    `json:"auth_method" gorm:"size:20;default:'password'"`
	Phone         string    `json:"phone,omitempty" gorm:"size:20"`
	PhoneVerified bool      `json:"phone_verified" gorm:"default:false"`
	Language      string    `json:"language" gorm:"size:5;default:'en'"`
	LoginCount    int       `json:"login_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Driver status values.
type DriverStatus string

const (
	DriverStatusAvailable  DriverStatus = "Available"
	DriverStatusOnDelivery DriverStatus = "On Delivery"
	DriverStatusOffline    DriverStatus = "Offline"
)

// Driver is a truck driver account with running job statistics. The
// active-driver count is derived by filtering on status, never kept as a
// separate counter.
type Driver struct {
	ID            string       `json:"id" gorm:"primaryKey;size:36"`
	Name          string       `json:"name" gorm:"size:100;not null"`
	NameKey       string       `json:"-" gorm:"size:100;not null;uniqueIndex"`
	PasswordHash  string       `json:"-" gorm:"size:256"`
	Email         string       `json:"email,omitempty" gorm:"size:200;index"`
	OAuthUID      string       `json:"-" gorm:"size:128;index"`
	AuthMethod    string       `json:"auth_method" gorm:"size:20;default:'password'"`
	VehicleNumber string       `json:"vehicle_number" gorm:"size:20"`
	Status        DriverStatus `json:"status" gorm:"size:20;not null;default:'Available';index"`
	Jobs          int          `json:"jobs" gorm:"default:0"`
	CO2SavedKg    float64      `json:"co2_saved_kg" gorm:"default:0"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}
