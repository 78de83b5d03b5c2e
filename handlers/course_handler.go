package handlers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/edubank/academy/database"
	"github.com/edubank/academy/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizQuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,max=6,dive,required"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
}

type ClassRequest struct {
	VideoURL    string                `json:"video_url" validate:"required,url"`
	AudioURL    *string               `json:"audio_url" validate:"omitempty,url"`
	TextContent *string               `json:"text_content"`
	Questions   []QuizQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type CourseRequest struct {
	Title       string         `json:"title" validate:"required,min=3"`
	Description string         `json:"description"`
	Price       int64          `json:"price" validate:"required,gt=0"`
	Classes     []ClassRequest `json:"classes" validate:"required,min=1,dive"`
}

func validateCourseRequest(c *fiber.Ctx, req *CourseRequest) error {
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	for _, class := range req.Classes {
		for _, q := range class.Questions {
			if q.CorrectOption >= len(q.Options) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "correct_option must reference one of the listed options"})
			}
		}
	}
	return nil
}

func classesFromRequest(req *CourseRequest) []models.Class {
	classes := make([]models.Class, 0, len(req.Classes))
	for i, cl := range req.Classes {
		questions := make([]models.QuizQuestion, 0, len(cl.Questions))
		for j, q := range cl.Questions {
			encoded, _ := json.Marshal(q.Options)
			questions = append(questions, models.QuizQuestion{
				Position:      j,
				QuestionText:  q.QuestionText,
				Options:       string(encoded),
				CorrectOption: q.CorrectOption,
			})
		}
		classes = append(classes, models.Class{
			Position:    i,
			VideoURL:    cl.VideoURL,
			AudioURL:    cl.AudioURL,
			TextContent: cl.TextContent,
			Questions:   questions,
		})
	}
	return classes
}

// CreateCourse registers a new course in pending review state. Nothing is
// purchasable until an admin approves it.
func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := validateCourseRequest(c, &req); err != nil {
		return err
	}

	course := models.Course{
		Title:        req.Title,
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		InstructorID: callerID(c),
		Status:       models.CourseStatusPending,
		Classes:      classesFromRequest(&req),
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

// UpdateCourse replaces the course content and always drops the status back
// to pending so edited content goes through review again before it can be
// sold.
func UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if course.InstructorID != callerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this course"})
	}

	var req CourseRequest
	if err := validateCourseRequest(c, &req); err != nil {
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var classIDs []string
		if err := tx.Model(&models.Class{}).Where("course_id = ?", course.ID).Pluck("id", &classIDs).Error; err != nil {
			return err
		}
		if len(classIDs) > 0 {
			if err := tx.Where("class_id IN ?", classIDs).Delete(&models.QuizQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", course.ID).Delete(&models.Class{}).Error; err != nil {
				return err
			}
		}

		course.Title = req.Title
		course.Description = strings.TrimSpace(req.Description)
		course.Price = req.Price
		course.Classes = classesFromRequest(&req)
		if err := tx.Save(&course).Error; err != nil {
			return err
		}
		if err := approvalService().ResetForReview(tx, course.ID); err != nil {
			return err
		}
		course.Status = models.CourseStatusPending
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course"})
	}

	return c.JSON(course)
}

// DeleteCourse removes the course and its content. Escrow transactions keep
// their own title and amount snapshots, so purchase history survives this.
func DeleteCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if course.InstructorID != callerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this course"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var classIDs []string
		if err := tx.Model(&models.Class{}).Where("course_id = ?", course.ID).Pluck("id", &classIDs).Error; err != nil {
			return err
		}
		if len(classIDs) > 0 {
			if err := tx.Where("class_id IN ?", classIDs).Delete(&models.QuizQuestion{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Class{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete course"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ListApprovedCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Course{}).Where("status = ?", models.CourseStatusApproved)
	countQuery := database.DB.Model(&models.Course{}).Where("status = ?", models.CourseStatusApproved)

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("title ILIKE ?", searchTerm)
		countQuery = countQuery.Where("title ILIKE ?", searchTerm)
	}

	var total int64
	countQuery.Count(&total)

	var courses []models.Course
	query.Preload("Instructor").Order("created_at desc").Offset(offset).Limit(limit).Find(&courses)

	return c.JSON(fiber.Map{
		"data": courses,
		"meta": fiber.Map{
			"total":        total,
			"current_page": page,
			"total_pages":  int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func GetCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	err := database.DB.
		Preload("Instructor").
		Preload("Classes", func(db *gorm.DB) *gorm.DB { return db.Order("classes.position asc") }).
		Preload("Classes.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("quiz_questions.position asc") }).
		Where("id = ? AND status = ?", courseID, models.CourseStatusApproved).
		First(&course).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	return c.JSON(course)
}

func GetMyCourses(c *fiber.Ctx) error {
	var courses []models.Course
	err := database.DB.
		Preload("Classes", func(db *gorm.DB) *gorm.DB { return db.Order("classes.position asc") }).
		Preload("Classes.Questions").
		Where("instructor_id = ?", callerID(c)).
		Order("created_at desc").
		Find(&courses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(courses)
}
