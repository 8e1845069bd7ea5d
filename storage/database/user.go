package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/user"
)

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, "'"+usr.ID+"'")
		}
		query += " AND id NOT IN (" + strings.Join(ids, ",") + ")"
	}
	query += ")"

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query := `
INSERT INTO "user" (id, first_name, last_name, roll_no, email, profile_picture, role, is_active, password_hash, created_at, updated_at)
VALUES (:id, :first_name, :last_name, NULLIF(:roll_no, ''), :email, :profile_picture, :role, :is_active, :password_hash, :created_at, :updated_at)`
	query, args, err := sqlxNamed(query, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "binding user")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	query := `SELECT * FROM "user" WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by id")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := `SELECT * FROM "user" WHERE LOWER(email) = LOWER($1)`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	query := `SELECT * FROM "user" WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (first_name ILIKE ` + p +
			` OR last_name ILIKE ` + p +
			` OR roll_no ILIKE ` + p +
			` OR email ILIKE ` + p + `)`
	}
	if filter.Role != "" {
		query += " AND role = " + arg(filter.Role)
	}
	if filter.IsActive != nil {
		query += " AND is_active = " + arg(*filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		query += " AND created_at >= " + arg(filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query += " AND created_at <= " + arg(filter.CreatedTo)
	}
	if len(orderings) > 0 {
		clauses := make([]string, 0, len(orderings))
		for _, ord := range orderings {
			clauses = append(clauses, ord.String())
		}
		query += " ORDER BY " + strings.Join(clauses, ", ")
	} else {
		query += " ORDER BY created_at DESC"
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	orig, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}

	if usr.FirstName != "" {
		orig.FirstName = usr.FirstName
	}
	if usr.LastName != "" {
		orig.LastName = usr.LastName
	}
	if usr.RollNo != "" {
		orig.RollNo = usr.RollNo
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if usr.ProfilePicture != "" {
		orig.ProfilePicture = usr.ProfilePicture
	}
	if usr.Role != "" {
		orig.Role = usr.Role
	}
	if len(usr.PasswordHash) > 0 {
		orig.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = time.Now().UTC()

	query := `
UPDATE "user"
SET first_name = :first_name, last_name = :last_name, roll_no = NULLIF(:roll_no, ''), email = :email,
    profile_picture = :profile_picture, role = :role, is_active = :is_active,
    password_hash = :password_hash, updated_at = :updated_at
WHERE id = :id`
	query, args, err := sqlxNamed(query, orig)
	if err != nil {
		return user.User{}, errors.Wrap(err, "binding user")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return orig, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	existing, err := repo.GetUserByEmail(ctx, usr.Email)
	if err == nil {
		usr.ID = existing.ID
		return repo.UpdateUser(ctx, usr, nil)
	}
	if errors.Cause(err) != user.ErrNotFound {
		return user.User{}, err
	}
	return repo.CreateUser(ctx, usr)
}

// userRow mirrors the "user" table with a nullable roll_no column.
type userRow struct {
	user.User
	RollNo *string `db:"roll_no"`
}

func (row userRow) toUser() user.User {
	usr := row.User
	if row.RollNo != nil {
		usr.RollNo = *row.RollNo
	}
	return usr
}
