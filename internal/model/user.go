package model

import "time"

// User represents an application user record as stored in the
// `users` table.  The json tags are omitted because the password hash must
// never be serialised; handlers build their own response shapes.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  FullName     – display name.
//  PasswordHash – bcrypt hashed password.
//  Role         – user or admin.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    FullName     string    // users.full_name
    PasswordHash string    // users.password_hash
    Role         Role      // users.role
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
