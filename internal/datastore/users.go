// users.go: user account operations
package datastore

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmattila/artstore-go/internal/errors"
)

var userMutableFields = map[string]bool{
	"username":      true,
	"email":         true,
	"password_hash": true,
	"is_active":     true,
	"is_superuser":  true,
}

// CreateUser inserts a new user, rejecting duplicate usernames and emails.
func (ds *DataStore) CreateUser(user *User) error {
	if user.Username == "" {
		return validationError("username must not be empty", "username", user.Username)
	}
	if user.Email == "" {
		return validationError("email must not be empty", "email", user.Email)
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return dbError(err, "create_user", "username", user.Username)
		}
		if count > 0 {
			return conflictError("user with username %s already exists", user.Username)
		}

		if err := tx.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return dbError(err, "create_user", "email", user.Email)
		}
		if count > 0 {
			return conflictError("user with email %s already exists", user.Email)
		}

		now := epochNow()
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		user.CreatedTime = now
		user.UpdatedTime = now

		if err := tx.Create(user).Error; err != nil {
			return dbError(err, "create_user", "user_id", user.ID)
		}
		return nil
	})
}

// GetUser retrieves a user by id.
func (ds *DataStore) GetUser(id string) (User, error) {
	var user User
	if err := ds.DB.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, notFoundError("user", id)
		}
		return User{}, dbError(err, "get_user", "user_id", id)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by the unique username.
func (ds *DataStore) GetUserByUsername(username string) (User, error) {
	var user User
	if err := ds.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, notFoundError("user", username)
		}
		return User{}, dbError(err, "get_user_by_username", "username", username)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by the unique email address.
func (ds *DataStore) GetUserByEmail(email string) (User, error) {
	var user User
	if err := ds.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, notFoundError("user", email)
		}
		return User{}, dbError(err, "get_user_by_email", "email", email)
	}
	return user, nil
}

// ListUsers returns users newest first, optionally filtered by the active and
// superuser flags.
func (ds *DataStore) ListUsers(filter UserFilter) ([]User, int64, error) {
	skip, limit := normalizePagination(filter.Skip, filter.Limit)

	query := ds.DB.Model(&User{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsSuperuser != nil {
		query = query.Where("is_superuser = ?", *filter.IsSuperuser)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "list_users")
	}

	var users []User
	err := query.Order("created_time DESC").Offset(skip).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, dbError(err, "list_users")
	}
	return users, total, nil
}

// UpdateUser applies a partial update; username and email uniqueness are
// re-checked when they change.
func (ds *DataStore) UpdateUser(id string, fields map[string]any) (User, error) {
	var updated User
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError("user", id)
			}
			return dbError(err, "update_user", "user_id", id)
		}

		updates := filterFields(fields, userMutableFields)

		if username, ok := updates["username"].(string); ok && username != user.Username {
			var count int64
			if err := tx.Model(&User{}).Where("username = ? AND id != ?", username, id).
				Count(&count).Error; err != nil {
				return dbError(err, "update_user", "username", username)
			}
			if count > 0 {
				return conflictError("user with username %s already exists", username)
			}
		}
		if email, ok := updates["email"].(string); ok && email != user.Email {
			var count int64
			if err := tx.Model(&User{}).Where("email = ? AND id != ?", email, id).
				Count(&count).Error; err != nil {
				return dbError(err, "update_user", "email", email)
			}
			if count > 0 {
				return conflictError("user with email %s already exists", email)
			}
		}

		updates["updated_time"] = epochNow()

		if err := tx.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError(err, "update_user", "user_id", id)
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// DeleteUser removes a user row. Users carry no soft delete flag.
func (ds *DataStore) DeleteUser(id string) error {
	result := ds.DB.Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return dbError(result.Error, "delete_user", "user_id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError("user", id)
	}
	return nil
}
