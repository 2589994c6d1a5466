package worker

import (
	"context"
	"sync"
	"time"

	"footstep/internal/pkg/notify"
	"footstep/pkg/metrics"

	"go.uber.org/zap"
)

// NoticeTask 通知任务
type NoticeTask struct {
	Notice notify.Notice
	Retry  int // 重试次数
}

// NoticePool 通知发送协程池，事务提交后投递，失败重试，超出重试次数写死信日志
type NoticePool struct {
	TaskQueue   chan NoticeTask
	RetryQueue  chan NoticeTask // 重试队列
	Sender      notify.Sender
	WorkerNum   int
	MaxRetry    int // 最大重试次数
	SendTimeout time.Duration
	RetryDelay  time.Duration

	log     *zap.Logger
	metrics *metrics.Collector
	wg      sync.WaitGroup
	once    sync.Once
	closed  chan struct{}
}

func NewNoticePool(sender notify.Sender, workerNum, bufferSize int, log *zap.Logger, collector *metrics.Collector) *NoticePool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &NoticePool{
		TaskQueue:   make(chan NoticeTask, bufferSize),
		RetryQueue:  make(chan NoticeTask, bufferSize/2+1),
		Sender:      sender,
		WorkerNum:   workerNum,
		MaxRetry:    3, // 最多重试3次
		SendTimeout: 10 * time.Second,
		RetryDelay:  time.Second,
		log:         log,
		metrics:     collector,
		closed:      make(chan struct{}),
	}
}

func (p *NoticePool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	p.log.Info("notice pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 停止接收新任务并等待队列中任务处理完
func (p *NoticePool) Stop() {
	p.once.Do(func() {
		close(p.closed)
		close(p.TaskQueue)
	})
	p.wg.Wait()
}

// Dispatch 实现 notify.Dispatcher，队列满时直接进死信
func (p *NoticePool) Dispatch(n notify.Notice) {
	p.enqueue(NoticeTask{Notice: n})
}

func (p *NoticePool) worker(id int) {
	defer p.wg.Done()
	for task := range p.TaskQueue {
		err := p.process(task)
		if p.metrics != nil {
			p.metrics.RecordNotification(string(task.Notice.Kind), err)
		}
		if err == nil {
			continue
		}

		p.log.Warn("notice send failed",
			zap.Int("worker", id),
			zap.String("kind", string(task.Notice.Kind)),
			zap.String("email", task.Notice.Email),
			zap.Int("retry", task.Retry),
			zap.Error(err))

		// 如果未达到最大重试次数，加入重试队列
		if task.Retry >= p.MaxRetry {
			p.deadLetter(task, err)
			continue
		}
		task.Retry++
		select {
		case p.RetryQueue <- task:
		default:
			p.deadLetter(task, err)
		}
	}
}

func (p *NoticePool) retryWorker() {
	for {
		select {
		case <-p.closed:
			// 关闭后剩余重试任务直接记死信
			for {
				select {
				case task := <-p.RetryQueue:
					p.deadLetter(task, errPoolClosed)
				default:
					return
				}
			}
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-time.After(time.Duration(task.Retry) * p.RetryDelay):
			case <-p.closed:
				p.deadLetter(task, errPoolClosed)
				continue
			}
			p.enqueue(task)
		}
	}
}

func (p *NoticePool) enqueue(task NoticeTask) {
	select {
	case <-p.closed:
		p.deadLetter(task, errPoolClosed)
		return
	default:
	}

	defer func() {
		// TaskQueue 可能已在 Stop 中关闭
		if recover() != nil {
			p.deadLetter(task, errPoolClosed)
		}
	}()
	select {
	case p.TaskQueue <- task:
	default:
		p.deadLetter(task, errQueueFull)
	}
}

func (p *NoticePool) process(task NoticeTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.SendTimeout)
	defer cancel()
	return p.Sender.Notify(ctx, task.Notice.Email, task.Notice.Kind, task.Notice.Params)
}

func (p *NoticePool) deadLetter(task NoticeTask, err error) {
	p.log.Error("notice dropped",
		zap.String("kind", string(task.Notice.Kind)),
		zap.String("email", task.Notice.Email),
		zap.Int("retry", task.Retry),
		zap.Error(err))
}
