// file: internals/features/classrooms/classrooms/service/classroom_service.go
package service

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	assignmentService "kelasku_backend/internals/features/assignments/assignments/service"
	sessionService "kelasku_backend/internals/features/attendance/sessions/service"
	dto "kelasku_backend/internals/features/classrooms/classrooms/dto"
	model "kelasku_backend/internals/features/classrooms/classrooms/model"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadService "kelasku_backend/internals/features/storage/uploads/service"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	"kelasku_backend/internals/helpers/authz"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type ClassroomService struct {
	DB      *gorm.DB
	Sweeper *uploadService.BlobSweeper
}

func NewClassroomService(db *gorm.DB, blobs helperOSS.BlobStore) *ClassroomService {
	return &ClassroomService{DB: db, Sweeper: uploadService.NewBlobSweeper(db, blobs)}
}

var errAlreadyMember = apperr.Conflict(apperr.CodeAlreadyMember, "you are already a member of this classroom")

/* =========================================================
   CREATE / UPDATE
========================================================= */

// Create: kelas + keanggotaan owner dalam satu transaksi.
func (s *ClassroomService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateClassroomRequest) (*dto.ClassroomResponse, error) {
	owner, err := authz.RequireTeacher(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	room := model.ClassroomModel{
		ClassroomName:        req.ClassroomName,
		ClassroomOwnerUserID: owner.ID,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return tx.Create(&model.ClassroomMemberModel{
			ClassroomMemberClassroomID: room.ClassroomID,
			ClassroomMemberUserID:      owner.ID,
			ClassroomMemberStatus:      model.MemberStatusOwner,
		}).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, nil, nil)
	}

	log.Printf("[CLASSROOM] created id=%s owner=%s", room.ClassroomID, owner.ID)
	resp := dto.FromModel(room)
	resp.Owner = dto.NewOwnerSummary(*owner)
	resp.MemberStatus = model.MemberStatusOwner
	return &resp, nil
}

func (s *ClassroomService) Update(ctx context.Context, userID, classroomID uuid.UUID, req dto.UpdateClassroomRequest) (*dto.ClassroomResponse, error) {
	room, err := authz.LoadClassroom(ctx, s.DB, classroomID)
	if err != nil {
		return nil, err
	}
	actor, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(room).Update("classroom_name", req.ClassroomName).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	room.ClassroomName = req.ClassroomName
	resp := dto.FromModel(*room)
	resp.MemberStatus = actor.Member.ClassroomMemberStatus
	return &resp, nil
}

// NewJoinCode: kode lama langsung tidak berlaku.
func (s *ClassroomService) NewJoinCode(ctx context.Context, userID, classroomID uuid.UUID) (*dto.ClassroomResponse, error) {
	room, err := authz.LoadClassroom(ctx, s.DB, classroomID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}
	code, err := model.GenerateJoinCode()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Model(room).Update("classroom_join_code", code).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	room.ClassroomJoinCode = code
	resp := dto.FromModel(*room)
	return &resp, nil
}

/* =========================================================
   MEMBERSHIP
========================================================= */

func (s *ClassroomService) Join(ctx context.Context, userID uuid.UUID, req dto.JoinClassroomRequest) (*dto.ClassroomResponse, error) {
	req = req.Normalize()
	if _, err := authz.LoadUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	room, err := authz.LoadClassroom(ctx, s.DB, req.ClassroomID)
	if err != nil {
		return nil, err
	}
	if room.ClassroomJoinCode != req.JoinCode {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeInvalidJoinCode, "invalid join code")
	}
	existing, err := authz.FindMembership(ctx, s.DB, room.ClassroomID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyMember
	}

	m := model.ClassroomMemberModel{
		ClassroomMemberClassroomID: room.ClassroomID,
		ClassroomMemberUserID:      userID,
		ClassroomMemberStatus:      model.MemberStatusActive,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, apperr.FromDB(err, nil, errAlreadyMember)
	}

	log.Printf("[CLASSROOM] user=%s joined classroom=%s", userID, room.ClassroomID)
	resp := dto.FromModel(*room)
	resp.MemberStatus = model.MemberStatusActive
	return &resp, nil
}

func (s *ClassroomService) Members(ctx context.Context, userID, classroomID uuid.UUID) ([]dto.MemberResponse, error) {
	if _, err := authz.RequireMember(ctx, s.DB, classroomID, userID); err != nil {
		return nil, err
	}

	var members []model.ClassroomMemberModel
	if err := s.DB.WithContext(ctx).
		Where("classroom_member_classroom_id = ?", classroomID).
		Find(&members).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	users, err := s.usersByID(ctx, memberUserIDs(members))
	if err != nil {
		return nil, err
	}

	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		u, ok := users[m.ClassroomMemberUserID]
		if !ok {
			continue
		}
		out = append(out, dto.NewMemberResponse(m, u))
	}
	// owner dulu, lalu nama
	sort.SliceStable(out, func(i, j int) bool {
		oi := out[i].ClassroomMemberStatus == model.MemberStatusOwner
		oj := out[j].ClassroomMemberStatus == model.MemberStatusOwner
		if oi != oj {
			return oi
		}
		if out[i].FName != out[j].FName {
			return out[i].FName < out[j].FName
		}
		return out[i].LName < out[j].LName
	})
	return out, nil
}

func memberUserIDs(ms []model.ClassroomMemberModel) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ClassroomMemberUserID)
	}
	return ids
}

func (s *ClassroomService) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]userModel.UserModel, error) {
	out := make(map[uuid.UUID]userModel.UserModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []userModel.UserModel
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

/* =========================================================
   READ
========================================================= */

// ListMine: semua kelas tempat user jadi anggota + ringkasan owner.
func (s *ClassroomService) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.ClassroomResponse, error) {
	if _, err := authz.LoadUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}

	var members []model.ClassroomMemberModel
	if err := s.DB.WithContext(ctx).
		Where("classroom_member_user_id = ?", userID).
		Find(&members).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if len(members) == 0 {
		return []dto.ClassroomResponse{}, nil
	}
	statusBy := make(map[uuid.UUID]model.MemberStatus, len(members))
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		statusBy[m.ClassroomMemberClassroomID] = m.ClassroomMemberStatus
		ids = append(ids, m.ClassroomMemberClassroomID)
	}

	var rooms []model.ClassroomModel
	if err := s.DB.WithContext(ctx).
		Where("classroom_id IN ?", ids).
		Order("classroom_created_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(rooms))
	for _, r := range rooms {
		ownerIDs = append(ownerIDs, r.ClassroomOwnerUserID)
	}
	owners, err := s.usersByID(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ClassroomResponse, 0, len(rooms))
	for _, r := range rooms {
		item := dto.FromModel(r)
		if o, ok := owners[r.ClassroomOwnerUserID]; ok {
			item.Owner = dto.NewOwnerSummary(o)
		}
		item.MemberStatus = statusBy[r.ClassroomID]
		out = append(out, item)
	}
	return out, nil
}

func (s *ClassroomService) Get(ctx context.Context, userID, classroomID uuid.UUID) (*dto.ClassroomResponse, error) {
	room, err := authz.LoadClassroom(ctx, s.DB, classroomID)
	if err != nil {
		return nil, err
	}
	actor, err := authz.RequireMember(ctx, s.DB, classroomID, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(*room)
	resp.MemberStatus = actor.Member.ClassroomMemberStatus
	return &resp, nil
}

// Info: nama kelas + status keanggotaan, untuk halaman join.
func (s *ClassroomService) Info(ctx context.Context, userID, classroomID uuid.UUID) (*dto.ClassroomInfoResponse, error) {
	if _, err := authz.LoadUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	room, err := authz.LoadClassroom(ctx, s.DB, classroomID)
	if err != nil {
		return nil, err
	}
	m, err := authz.FindMembership(ctx, s.DB, classroomID, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ClassroomInfoResponse{ClassroomName: room.ClassroomName, IsMember: m != nil}, nil
}

/* =========================================================
   DELETE (cascade)
========================================================= */

// Remove: hanya owner. Tugas (beserta submission), sesi absensi, notifikasi,
// keanggotaan lalu kelas dihapus dalam satu transaksi; blob disapu setelah commit.
func (s *ClassroomService) Remove(ctx context.Context, userID, classroomID uuid.UUID) error {
	room, err := authz.LoadClassroom(ctx, s.DB, classroomID)
	if err != nil {
		return err
	}
	if _, err := authz.RequireTeacherMember(ctx, s.DB, classroomID, userID); err != nil {
		return err
	}
	if room.ClassroomOwnerUserID != userID {
		return apperr.Forbidden(apperr.CodeNotOwner, "only the classroom owner can remove it")
	}

	var keys []string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if keys, err = assignmentService.CascadeDeleteClassroomAssignmentsTx(tx, classroomID); err != nil {
			return err
		}
		if err := sessionService.DeleteByClassroomTx(tx, classroomID); err != nil {
			return err
		}
		if err := notificationService.DeleteByClassroom(tx, classroomID); err != nil {
			return err
		}
		if err := tx.Where("classroom_member_classroom_id = ?", classroomID).
			Delete(&model.ClassroomMemberModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("classroom_id = ?", classroomID).Delete(&model.ClassroomModel{}).Error; err != nil {
			return err
		}
		return uploadService.MarkForDeletion(tx, "classroom_removed", keys...)
	})
	if err != nil {
		return apperr.FromDB(err, nil, nil)
	}

	deleted := s.Sweeper.Flush(ctx, keys)
	log.Printf("[CLASSROOM] removed id=%s blobs=%d/%d", classroomID, deleted, len(keys))
	return nil
}
