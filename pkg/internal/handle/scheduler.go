package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/scheduler"
)

// SchedulerJobs 返回定时任务列表，未启用定时任务时为空数组.
//
//	@Summary	定时任务
//	@Tags		调度
//	@Produce	json
//	@Success	200	{object}	map[string]any	"任务列表"
//	@Router		/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	jobs := []scheduler.JobInfo{}

	if sched := ctxPkg.GetScheduler(c.Request.Context()); sched != nil {
		jobs = sched.GetJobInfos()
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// SchedulerQueueWaiting 返回排队等待执行的任务数.
func SchedulerQueueWaiting(c *gin.Context) {
	waiting := 0

	if sched := ctxPkg.GetScheduler(c.Request.Context()); sched != nil {
		waiting = sched.JobsWaitingInQueue()
	}

	c.JSON(http.StatusOK, gin.H{"waiting": waiting})
}
