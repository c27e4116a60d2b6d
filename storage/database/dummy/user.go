package dummydb

import (
	"context"
	"strings"
	"time"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.users {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	usr.ID = repo.db.nextPK("users")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, u.Username, u.FullName, u.Email) {
				continue
			}
			if filter.Role != "" && u.Role != filter.Role {
				continue
			}
			if filter.IsActive != nil && u.IsActive != *filter.IsActive {
				continue
			}
		}
		users = append(users, *u)
	}

	sortBy(len(users), ordering, comparators{
		"id":         func(i, j int) int { return compareInts(users[i].ID, users[j].ID) },
		"username":   func(i, j int) int { return strings.Compare(users[i].Username, users[j].Username) },
		"role":       func(i, j int) int { return strings.Compare(users[i].Role, users[j].Role) },
		"full_name":  func(i, j int) int { return strings.Compare(users[i].FullName, users[j].FullName) },
		"is_active":  func(i, j int) int { return compareBools(users[i].IsActive, users[j].IsActive) },
		"created_at": func(i, j int) int { return compareTimes(users[i].CreatedAt, users[j].CreatedAt) },
		"last_login": func(i, j int) int { return compareTimes(users[i].LastLogin, users[j].LastLogin) },
	}, func(i, j int) int {
		return compareInts(users[i].ID, users[j].ID)
	}, func(i, j int) {
		users[i], users[j] = users[j], users[i]
	})
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, usr := range repo.db.users {
			if usr.Username == filter.Username {
				return *usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	orig.Role = usr.Role
	orig.FullName = usr.FullName
	orig.Email = usr.Email
	orig.Phone = usr.Phone
	orig.IsActive = usr.IsActive
	return *orig, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id int, at time.Time, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.LastLogin = at.UTC()
	return nil
}

func (repo *userRepository) DeleteUsers(_ context.Context, ids []int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
		// ON DELETE SET NULL
		for _, e := range repo.db.exams {
			if e.CreatedBy == id {
				e.CreatedBy = 0
			}
		}
		for _, res := range repo.db.results {
			if res.EnteredBy == id {
				res.EnteredBy = 0
			}
		}
	}
	return nil
}
