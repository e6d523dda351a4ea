package forms

import (
	"fmt"

	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// Operator-facing alert texts
const (
	msgSendFailed          = "เกิดข้อผิดพลาดในการส่งข้อมูล: "
	msgNoSelectedJob       = "ไม่พบข้อมูลงานที่เลือก กรุณาเลือกงานใหม่"
	msgQuantitiesRequired  = "กรุณาใส่จำนวน FG, NG และ Rework"
	msgPauseReasonRequired = "กรุณาเลือกเหตุผลการหยุดงาน"
	msgOtherReasonRequired = "กรุณาระบุเหตุผลอื่น ๆ"
	msgContinued           = "งานถูกดำเนินการต่อแล้ว"
	msgOTStarted           = "เริ่ม OT เรียบร้อยแล้ว"
	msgOTStopped           = "ปิด OT เรียบร้อยแล้ว"
	msgEmployeeRequired    = "กรุณาใส่รหัสพนักงาน"
	msgQuantityRequired    = "กรุณาใส่จำนวนชิ้นงานอย่างน้อย 1 รายการ"
	msgDailyReportSaved    = "บันทึกรายงานประจำวันเรียบร้อยแล้ว"
	msgScanFirst           = "กรุณาแสกน QR Code ก่อน"
	msgQCReportSaved       = "บันทึก QC Report เรียบร้อยแล้ว"
)

func duplicateAlert(key jobs.JobKey) string {
	machine := "N/A"
	if key.MachineNo != nil && *key.MachineNo != "" {
		machine = *key.MachineNo
	}
	return fmt.Sprintf("งานนี้เปิดอยู่แล้ว (ซ้ำกัน)\nProcess Name: %s\nProcess No.: %s\nStep No.: %s\nMachine No.: %s",
		key.ProcessName, key.ProcessNo, key.StepNo, machine)
}
