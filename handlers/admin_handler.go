package handlers

import (
	"fmt"
	"math"
	"strconv"

	"github.com/edubank/academy/database"
	"github.com/edubank/academy/models"
	"github.com/edubank/academy/notifications"
	"github.com/edubank/academy/services"
	"github.com/edubank/academy/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ListPendingCourses(c *fiber.Ctx) error {
	var pendingCourses []models.Course
	if err := database.DB.Preload("Instructor").Where("status = ?", models.CourseStatusPending).
		Order("created_at asc").Find(&pendingCourses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(pendingCourses)
}

type ApproveCourseRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// ApproveCourse clears a course for sale and pays the instructor the one-time
// incentive. The operator passphrase gates this, not the admin's login alone.
func ApproveCourse(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var req ApproveCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course, err := approvalService().Approve(courseID, req.Secret)
	if err != nil {
		return serviceError(c, err)
	}

	var instructor models.User
	if err := database.DB.First(&instructor, "id = ?", course.InstructorID).Error; err == nil {
		go notifications.SendEmail(instructor.FullName, instructor.Email, "Your Course has been Approved!",
			fmt.Sprintf("<h1>Congratulations!</h1><p>Your course <b>%s</b> is now live and purchasable. An incentive of %d units has been credited to your account.</p>", course.Title, services.ApprovalIncentive))
	}

	return c.JSON(fiber.Map{"message": "Course approved", "course": course})
}

func RejectCourse(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	course, err := approvalService().Reject(courseID)
	if err != nil {
		return serviceError(c, err)
	}

	var instructor models.User
	if err := database.DB.First(&instructor, "id = ?", course.InstructorID).Error; err == nil {
		go notifications.SendEmail(instructor.FullName, instructor.Email, "Update on Your Course Submission",
			fmt.Sprintf("<h1>Course Review Update</h1><p>After careful review, your course <b>%s</b> was not approved at this time.</p>", course.Title))
	}

	return c.JSON(fiber.Map{"message": "Course rejected", "course": course})
}

func AdminGetTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	status := c.Query("status")
	offset := (page - 1) * limit

	txns, total, err := escrowService().ListAll(status, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"data": txns,
		"meta": fiber.Map{
			"total":     total,
			"page":      page,
			"last_page": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// AdminResolveTransaction acts on a purchase awaiting admin review. Approve
// forwards it to the instructor with the money still in escrow; decline
// refunds the learner in full. A transaction not in pending_admin is rejected
// untouched, so double submits can never refund twice.
func AdminResolveTransaction(c *fiber.Ctx) error {
	txID, err := uuid.Parse(c.Params("transactionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID format"})
	}

	type ResolveRequest struct {
		Decision string `json:"decision" validate:"required,oneof=approve decline"`
	}
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	txn, err := escrowService().AdminResolve(txID, req.Decision == "approve")
	if err != nil {
		return serviceError(c, err)
	}

	websocket.Notify(txn)

	var learner models.User
	if err := database.DB.First(&learner, "id = ?", txn.LearnerID).Error; err == nil {
		if txn.Status == models.TxStatusPendingInstructor {
			go notifications.SendEmail(learner.FullName, learner.Email, "Purchase Cleared",
				fmt.Sprintf("<h1>Purchase Cleared</h1><p>Your purchase of <b>%s</b> passed review and now awaits the instructor's acknowledgment.</p>", txn.CourseTitle))
		} else {
			go notifications.SendEmail(learner.FullName, learner.Email, "Purchase Declined",
				fmt.Sprintf("<h1>Purchase Declined</h1><p>Your purchase of <b>%s</b> was declined. The full amount of %d units has been returned to your account.</p>", txn.CourseTitle, txn.Amount))
		}
	}

	return c.JSON(fiber.Map{"message": "Transaction resolved", "transaction": txn})
}

type DashboardAnalyticsResponse struct {
	TotalLearners      int64                `json:"total_learners"`
	TotalInstructors   int64                `json:"total_instructors"`
	ApprovedCourses    int64                `json:"approved_courses"`
	PendingCourses     int64                `json:"pending_courses"`
	EscrowHeld         int64                `json:"escrow_held"`
	SettledVolume      int64                `json:"settled_volume"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var response DashboardAnalyticsResponse

	database.DB.Model(&models.User{}).Where("role = ?", "student").Count(&response.TotalLearners)
	database.DB.Model(&models.User{}).Where("role = ?", "instructor").Count(&response.TotalInstructors)
	database.DB.Model(&models.Course{}).Where("status = ?", models.CourseStatusApproved).Count(&response.ApprovedCourses)
	database.DB.Model(&models.Course{}).Where("status = ?", models.CourseStatusPending).Count(&response.PendingCourses)

	database.DB.Model(&models.Transaction{}).
		Where("status IN ?", []string{models.TxStatusPendingAdmin, models.TxStatusPendingInstructor}).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&response.EscrowHeld)

	database.DB.Model(&models.Transaction{}).
		Where("status = ?", models.TxStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&response.SettledVolume)

	database.DB.Order("created_at desc").Limit(5).
		Preload("Learner").Preload("Instructor").Find(&response.RecentTransactions)

	return c.JSON(response)
}
