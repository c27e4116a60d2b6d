package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
	"github.com/trezcool/sems/storage/database"
)

const usersTable = "users"

var (
	userColumns = []string{
		"user_id", "username", "password", "role", "full_name", "email", "phone", "is_active", "created_at", "last_login",
	}
	userOrderColumns = map[string]string{
		"id":         "user_id",
		"username":   "username",
		"role":       "role",
		"full_name":  "full_name",
		"is_active":  "is_active",
		"created_at": "created_at",
		"last_login": "last_login",
	}
)

type userRow struct {
	ID        int         `db:"user_id"`
	Username  string      `db:"username"`
	Password  string      `db:"password"`
	Role      string      `db:"role"`
	FullName  string      `db:"full_name"`
	Email     null.String `db:"email"`
	Phone     null.String `db:"phone"`
	IsActive  bool        `db:"is_active"`
	CreatedAt time.Time   `db:"created_at"`
	LastLogin null.Time   `db:"last_login"`
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) user.Repository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:        usr.ID,
		Username:  usr.Username,
		Password:  string(usr.PasswordHash),
		Role:      usr.Role,
		FullName:  usr.FullName,
		Email:     null.NewString(usr.Email, usr.Email != ""),
		Phone:     null.NewString(usr.Phone, usr.Phone != ""),
		IsActive:  usr.IsActive,
		CreatedAt: usr.CreatedAt.UTC(),
		LastLogin: null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: []byte(row.Password),
		Role:         row.Role,
		FullName:     row.FullName,
		Email:        row.Email.String,
		Phone:        row.Phone.String,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

func (repo userRepository) trapUniqueErr(err error, msg string) error {
	if _, ok := database.UniqueViolation(err); ok {
		return user.ErrUsernameExists
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	r := repo.toRow(usr)
	b := psql.Insert(usersTable).
		Columns("username", "password", "role", "full_name", "email", "phone", "is_active", "created_at").
		Values(r.Username, r.Password, r.Role, r.FullName, r.Email, r.Phone, r.IsActive, r.CreatedAt).
		Suffix("RETURNING " + joinColumns(userColumns))

	var row userRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return user.User{}, repo.trapUniqueErr(err, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	b := psql.Select(userColumns...).From(usersTable)

	if filter != nil {
		// users with Username, FullName or Email matching the search keyword
		if filter.Search != "" {
			val := likeValue(filter.Search)
			b = b.Where(sq.Or{
				sq.Expr("LOWER(username) LIKE ?", val),
				sq.Expr("LOWER(full_name) LIKE ?", val),
				sq.Expr("LOWER(email) LIKE ?", val),
			})
		}
		if filter.Role != "" {
			b = b.Where(sq.Eq{"role": filter.Role})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	b = b.OrderBy(append(orderBy(ordering, userOrderColumns), "user_id ASC")...)

	var rows []userRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	b := psql.Select(userColumns...).From(usersTable)
	switch {
	case filter.ID != 0:
		b = b.Where(sq.Eq{"user_id": filter.ID})
	case filter.Username != "":
		b = b.Where(sq.Eq{"username": filter.Username})
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	r := repo.toRow(usr)
	b := psql.Update(usersTable).
		SetMap(map[string]interface{}{
			"password":  r.Password,
			"role":      r.Role,
			"full_name": r.FullName,
			"email":     r.Email,
			"phone":     r.Phone,
			"is_active": r.IsActive,
		}).
		Where(sq.Eq{"user_id": usr.ID}).
		Suffix("RETURNING " + joinColumns(userColumns))

	var row userRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, id int, at time.Time, exec ...core.DBExecutor) error {
	b := psql.Update(usersTable).Set("last_login", at.UTC()).Where(sq.Eq{"user_id": id})
	n, err := execute(ctx, repo.getExec(exec), b)
	if err != nil {
		return errors.Wrap(err, "setting last login")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) DeleteUsers(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := execute(ctx, repo.getExec(exec), psql.Delete(usersTable).Where(sq.Eq{"user_id": ids})); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
