// Package testkit menyiapkan DB sqlite in-memory + data dasar untuk unit test service/controller.
package testkit

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "kelasku_backend/internals/databases"
	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	userModel "kelasku_backend/internals/features/users/user/model"
)

var dbSeq int64

// OpenDB: satu database in-memory per test, sudah dimigrasi.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:kelasku_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Clock: jam yang bisa digeser di test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func CreateUser(t *testing.T, db *gorm.DB, role userModel.UserRole, fname string) userModel.UserModel {
	t.Helper()
	u := userModel.UserModel{
		FName:              fname,
		LName:              "Test",
		Email:              fmt.Sprintf("%s.%s@kelasku.test", strings.ToLower(fname), uuid.NewString()[:8]),
		PasswordHash:       "x",
		IdentificationCode: uuid.NewString()[:6],
		Role:               role,
		Gender:             userModel.GenderFemale,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// CreateClassroom: kelas milik owner (status owner).
func CreateClassroom(t *testing.T, db *gorm.DB, owner userModel.UserModel, name string) classroomModel.ClassroomModel {
	t.Helper()
	c := classroomModel.ClassroomModel{
		ClassroomName:        name,
		ClassroomOwnerUserID: owner.ID,
	}
	require.NoError(t, db.Create(&c).Error)
	AddMember(t, db, c.ClassroomID, owner.ID, classroomModel.MemberStatusOwner)
	return c
}

func AddMember(t *testing.T, db *gorm.DB, classroomID, userID uuid.UUID, status classroomModel.MemberStatus) {
	t.Helper()
	require.NoError(t, db.Create(&classroomModel.ClassroomMemberModel{
		ClassroomMemberClassroomID: classroomID,
		ClassroomMemberUserID:      userID,
		ClassroomMemberStatus:      status,
	}).Error)
}

// Fixture: guru pemilik kelas + dua siswa aktif.
type Fixture struct {
	DB        *gorm.DB
	Teacher   userModel.UserModel
	Alice     userModel.UserModel
	Bob       userModel.UserModel
	Classroom classroomModel.ClassroomModel
}

func NewFixture(t *testing.T) Fixture {
	t.Helper()
	db := OpenDB(t)
	teacher := CreateUser(t, db, userModel.RoleTeacher, "Guru")
	alice := CreateUser(t, db, userModel.RoleStudent, "Alice")
	bob := CreateUser(t, db, userModel.RoleStudent, "Bob")
	room := CreateClassroom(t, db, teacher, "Matematika 7A")
	AddMember(t, db, room.ClassroomID, alice.ID, classroomModel.MemberStatusActive)
	AddMember(t, db, room.ClassroomID, bob.ID, classroomModel.MemberStatusActive)
	return Fixture{DB: db, Teacher: teacher, Alice: alice, Bob: bob, Classroom: room}
}
