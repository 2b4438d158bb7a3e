package access

import "time"

// User is the credential-store row backing authentication. PasswordTemp
// holds a bcrypt digest of the generated temporary password; non-NULL means
// the account must complete a forced password change. PasswordVersion and
// AccessVersion are append-only counters: bumping either invalidates every
// token issued before the bump.
type User struct {
	ID              int64     `gorm:"primaryKey"`
	Username        string    `gorm:"column:username;uniqueIndex;not null"`
	FirstName       string    `gorm:"column:first_name;not null"`
	LastName        string    `gorm:"column:last_name;not null"`
	Email           *string   `gorm:"column:email;uniqueIndex"`
	Phone           *string   `gorm:"column:phone;uniqueIndex"`
	PasswordHash    string    `gorm:"column:password_hash;not null"`
	PasswordTemp    *string   `gorm:"column:password_temp"`
	PasswordVersion int       `gorm:"column:password_version;not null;default:1"`
	AccessVersion   int       `gorm:"column:access_version;not null;default:1"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	UserGroupID     *int64    `gorm:"column:user_group_id"`
	CreatedAt       time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string { return "users" }

type UserGroup struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (UserGroup) TableName() string { return "user_groups" }

type Permission struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Permission) TableName() string { return "permissions" }

// Function is a protected operation identifier. IsAssigned is maintained by
// the permission-function reconciler: true iff at least one link row exists.
type Function struct {
	ID         int64     `gorm:"primaryKey"`
	Name       string    `gorm:"column:name;uniqueIndex;not null"`
	IsAssigned bool      `gorm:"column:is_assigned;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
}

func (Function) TableName() string { return "functions" }

type PermissionFunction struct {
	ID           int64 `gorm:"primaryKey"`
	PermissionID int64 `gorm:"column:permission_id;not null"`
	FunctionID   int64 `gorm:"column:function_id;not null"`
}

func (PermissionFunction) TableName() string { return "permission_functions" }

// UserPermissionGroup grants a permission either to a user or to a group;
// exactly one of UserID/GroupID is set per row.
type UserPermissionGroup struct {
	ID           int64  `gorm:"primaryKey"`
	UserID       *int64 `gorm:"column:user_id"`
	GroupID      *int64 `gorm:"column:group_id"`
	PermissionID int64  `gorm:"column:permission_id;not null"`
}

func (UserPermissionGroup) TableName() string { return "user_permission_groups" }

type App struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (App) TableName() string { return "apps" }

type View struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (View) TableName() string { return "views" }

// AppUser grants a user direct access to an app. Grant order matters for the
// token bundle, so the serial id doubles as the ordering key.
type AppUser struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"column:user_id;not null"`
	AppID  int64 `gorm:"column:app_id;not null"`
}

func (AppUser) TableName() string { return "app_users" }

// AppViewUser attaches a view either to a user directly (UserID set) or to
// an app (AppID set); users inherit all views of apps they can access.
type AppViewUser struct {
	ID     int64  `gorm:"primaryKey"`
	UserID *int64 `gorm:"column:user_id"`
	AppID  *int64 `gorm:"column:app_id"`
	ViewID int64  `gorm:"column:view_id;not null"`
}

func (AppViewUser) TableName() string { return "app_view_users" }
