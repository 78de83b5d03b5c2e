package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/edubank/academy/configs"
	"github.com/edubank/academy/database"
	"github.com/edubank/academy/models"
	"github.com/google/uuid"
)

// GenerateReceipt renders and uploads a PDF receipt for a completed purchase.
// It is best-effort and runs after settlement; a failure here never touches
// the ledger or the transaction record.
func GenerateReceipt(txn models.Transaction) {
	if txn.Status != models.TxStatusCompleted {
		return
	}

	var existing models.Receipt
	if err := database.DB.Where("transaction_id = ?", txn.ID).First(&existing).Error; err == nil {
		return
	}

	var learner models.User
	if err := database.DB.First(&learner, "id = ?", txn.LearnerID).Error; err != nil {
		log.Printf("🔥 Failed to load learner for receipt on transaction %s: %v", txn.ID, err)
		return
	}

	htmlData, err := generateReceiptHTML(learner.FullName, txn)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	uploadURL, err := uploadReceiptToCloudinary(pdfBytes, txn.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	receipt := models.Receipt{
		TransactionID: txn.ID,
		LearnerID:     txn.LearnerID,
		ReceiptURL:    uploadURL,
		IssuedAt:      time.Now(),
	}
	if err := database.DB.Create(&receipt).Error; err != nil {
		log.Printf("🔥 Failed to create receipt record for transaction %s: %v", txn.ID, err)
	} else {
		log.Printf("✅ Generated and uploaded receipt for transaction %s.", txn.ID)
	}
}

func generateReceiptHTML(learnerName string, txn models.Transaction) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		LearnerName   string
		CourseTitle   string
		Amount        int64
		TransactionID string
		IssuedDate    string
	}{
		LearnerName:   learnerName,
		CourseTitle:   txn.CourseTitle,
		Amount:        txn.Amount,
		TransactionID: txn.ID.String(),
		IssuedDate:    time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceiptToCloudinary(fileBytes []byte, transactionID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", transactionID, uuid.New().String()),
		Folder:       "academy_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
